package types

// KeyPolicy selects which cell of a record identifies it in record-level
// comparisons. Two records are equal under a policy when their key cells
// are equal; every other cell is ignored.
type KeyPolicy struct {
	Index int
}

// Default record keys: the field name for tract records, the composite id
// for course lookups on either side of a join.
var (
	ByFieldName      = KeyPolicy{Index: MBLFieldName}
	ByMBLCompositeID = KeyPolicy{Index: MBLCompositeID}
	ByKMLCompositeID = KeyPolicy{Index: KMLID}
)

// Key returns r's key cell under the policy.
func (p KeyPolicy) Key(r *Record) string {
	return r.Cell(p.Index)
}

// Equal reports whether a and b have the same key cell.
func (p KeyPolicy) Equal(a, b *Record) bool {
	return p.Key(a) == p.Key(b)
}

// Comparator carries the active record key policy for one caller. It is
// not shared between goroutines.
type Comparator struct {
	policy KeyPolicy
}

// NewComparator returns a comparator using p.
func NewComparator(p KeyPolicy) *Comparator {
	return &Comparator{policy: p}
}

// Policy returns the active policy.
func (c *Comparator) Policy() KeyPolicy {
	return c.policy
}

// Key returns r's key under the active policy.
func (c *Comparator) Key(r *Record) string {
	return c.policy.Key(r)
}

// Equal compares a and b under the active policy.
func (c *Comparator) Equal(a, b *Record) bool {
	return c.policy.Equal(a, b)
}

// Borrow switches to p and returns a func restoring the previous policy.
// Callers defer the returned func so the previous policy comes back on every
// exit path:
//
//	defer cmp.Borrow(types.ByKMLCompositeID)()
func (c *Comparator) Borrow(p KeyPolicy) (restore func()) {
	prev := c.policy
	c.policy = p
	return func() { c.policy = prev }
}
