// Package join reconciles a parsed tract-description table with a parsed
// placemark table: parcels are matched by key and course count, then
// matched parcels are merged course by course.
package join

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"deedjoin/internal/diag"
	"deedjoin/internal/types"
)

// DuplicatePolicy decides how keys held by more than one parcel are joined.
type DuplicatePolicy int

const (
	// Reject never matches a key that repeats in either table.
	Reject DuplicatePolicy = iota
	// First matches the first parcel carrying a key. Later placemarks with
	// the same key are reported as unmatched.
	First
)

func (p DuplicatePolicy) String() string {
	if p == First {
		return "first"
	}
	return "reject"
}

// ParseDuplicatePolicy converts a configuration value to a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return Reject, nil
	case "first":
		return First, nil
	}
	return Reject, fmt.Errorf("unknown duplicate policy %q (want reject or first)", s)
}

// Counts is the parcel classification produced by Combine.
type Counts struct {
	Combined   int `yaml:"combined"`
	Failed     int `yaml:"failed"`
	NoMatchKML int `yaml:"no_match_kml"`
	NoMatchMBL int `yaml:"no_match_mbl"`
}

// Total returns the number of classified parcels.
func (c Counts) Total() int {
	return c.Combined + c.Failed + c.NoMatchKML + c.NoMatchMBL
}

// CourseCounts classifies the rows produced by Join.
type CourseCounts struct {
	Joined     int `yaml:"joined"`
	KMLFailed  int `yaml:"kml_failed"`
	KMLNoMatch int `yaml:"kml_no_match"`
	MBLFailed  int `yaml:"mbl_failed"`
	MBLNoMatch int `yaml:"mbl_no_match"`
}

// Total returns the number of emitted rows.
func (c CourseCounts) Total() int {
	return c.Joined + c.KMLFailed + c.KMLNoMatch + c.MBLFailed + c.MBLNoMatch
}

// Result is the output of Join.
type Result struct {
	// Table holds one parcel per input parcel that produced rows. Each
	// record is a course row of types.JoinedWidth cells.
	Table       *types.Table
	Parcels     Counts
	Courses     CourseCounts
	Diagnostics diag.Diagnostics
}

// Joiner matches the two tables.
type Joiner struct {
	Policy DuplicatePolicy
	Logger zerolog.Logger

	cmp *types.Comparator
}

// NewJoiner returns a joiner with the given duplicate policy and no logging.
func NewJoiner(policy DuplicatePolicy) *Joiner {
	return &Joiner{
		Policy: policy,
		Logger: zerolog.Nop(),
		cmp:    types.NewComparator(types.ByFieldName),
	}
}

// Comparator returns the record comparator used for course lookups.
func (j *Joiner) Comparator() *types.Comparator {
	if j.cmp == nil {
		j.cmp = types.NewComparator(types.ByFieldName)
	}
	return j.cmp
}

// Combine classifies every parcel of both tables, in place.
//
// Each placemark is compared with the tract parcel of the same key. When
// their course counts agree (discounting the centroid if kmlHasCentroid) the
// placemark's records are appended to the tract parcel, which is marked
// combined. Otherwise the placemark is appended to mbl and marked failed
// together with its tract parcel; a placemark without a partner is appended
// and marked noMatchKML. Remaining tract parcels are marked noMatchMBL.
//
// Parcels of kml are moved into mbl, so callers that need kml afterwards
// should pass a clone. Repeated keys are reported as KeyCollision
// diagnostics and resolved by the joiner's policy.
func (j *Joiner) Combine(mbl, kml *types.Table, kmlHasCentroid bool) (Counts, diag.Diagnostics) {
	var (
		c     Counts
		diags diag.Diagnostics
	)

	mblDups := j.collisions(mbl, "mbl", &diags)
	kmlDups := j.collisions(kml, "kml", &diags)

	idx := mbl.Index()
	nMBL := mbl.Len()
	taken := make(map[int]bool)

	for _, kp := range kml.Parcels {
		pos := j.match(kp, idx, mblDups, kmlDups, taken)
		if pos < 0 {
			kp.NoMatchKML = true
			mbl.Add(kp)
			c.NoMatchKML++
			j.trace(kp)
			continue
		}
		taken[pos] = true

		mp := mbl.Parcels[pos]
		want := kp.GeometryCount()
		if kmlHasCentroid {
			want--
		}
		if mp.GeometryCount() == want {
			mp.Absorb(kp)
			mp.Name = kp.Name
			mp.Combined = true
			c.Combined++
			j.trace(mp)
			continue
		}

		kp.Failed = true
		mp.Failed = true
		mbl.Add(kp)
		c.Failed++
		j.Logger.Debug().
			Str("key", kp.Key).
			Int("mbl_courses", mp.GeometryCount()).
			Int("kml_courses", want).
			Msg("course counts differ")
	}

	for _, p := range mbl.Parcels[:nMBL] {
		if !p.Combined && !p.Failed && !p.NoMatchKML {
			p.NoMatchMBL = true
			c.NoMatchMBL++
			j.trace(p)
		}
	}
	return c, diags
}

// match returns the position in the tract table joined to placemark kp, or
// -1 when it has no usable partner.
func (j *Joiner) match(kp *types.Parcel, idx types.Index, mblDups, kmlDups map[string]bool, taken map[int]bool) int {
	if kp.Key == "" || kp.Len() == 0 {
		return -1
	}
	if j.Policy == Reject && (mblDups[kp.Key] || kmlDups[kp.Key]) {
		return -1
	}

	pos, err := idx.Lookup(kp.Key)
	if errors.Is(err, diag.ErrNotFound) || taken[pos] {
		return -1
	}
	return pos
}

// collisions reports every repeated non-empty key of t and returns them.
func (j *Joiner) collisions(t *types.Table, source string, diags *diag.Diagnostics) map[string]bool {
	dups := make(map[string]bool)
	for _, kc := range DuplicateKeys(t) {
		if kc.Key == "" {
			continue
		}
		dups[kc.Key] = true

		outcome := "none of them are joined"
		if j.Policy == First {
			outcome = "only the first is joined"
		}
		diags.Warnf(diag.KeyCollision, source, 0, kc.Key,
			"%d parcels share this key; %s", kc.Count, outcome)
	}
	return dups
}

func (j *Joiner) trace(p *types.Parcel) {
	j.Logger.Debug().
		Str("key", p.Key).
		Str("source", p.Source.String()).
		Str("status", p.Status().String()).
		Msg("parcel classified")
}

// Join combines copies of the two tables and merges the courses of every
// combined parcel with the placemark vertices sharing their composite id.
// Courses without a partner are padded with blanks on the missing side so
// that every row has types.JoinedWidth cells. The inputs are not modified.
func (j *Joiner) Join(mbl, kml *types.Table, kmlHasCentroid bool) (*Result, error) {
	cmp := j.Comparator()
	defer cmp.Borrow(types.ByKMLCompositeID)()

	if mbl == nil || kml == nil {
		return nil, errors.New("join: both tables are required")
	}

	m, k := mbl.Clone(), kml.Clone()
	res := &Result{Table: types.NewTable()}
	res.Parcels, res.Diagnostics = j.Combine(m, k, kmlHasCentroid)
	res.Table.Fields = m.Fields
	res.Table.Comments = m.Comments

	for _, p := range m.Parcels {
		out := &types.Parcel{
			Key:        p.Key,
			Name:       p.Name,
			Source:     p.Source,
			Combined:   p.Combined,
			Failed:     p.Failed,
			NoMatchKML: p.NoMatchKML,
			NoMatchMBL: p.NoMatchMBL,
			Joined:     true,
		}

		switch {
		case p.Combined:
			j.joinCourses(p, out, &res.Courses)
		case p.Source == types.SourceKML:
			for _, r := range kmlCourses(p) {
				out.Add(kmlRow(r, p.Name))
				if p.Failed {
					res.Courses.KMLFailed++
				} else {
					res.Courses.KMLNoMatch++
				}
			}
		default:
			for _, r := range p.Records() {
				if !r.Geometry {
					continue
				}
				out.Add(mblRow(r))
				if p.Failed {
					res.Courses.MBLFailed++
				} else {
					res.Courses.MBLNoMatch++
				}
			}
		}

		if out.Len() > 0 {
			res.Table.Add(out)
		}
	}

	j.Logger.Debug().
		Int("joined", res.Courses.Joined).
		Int("rows", res.Courses.Total()).
		Msg("courses joined")
	return res, nil
}

// joinCourses merges the courses of a combined parcel into out.
func (j *Joiner) joinCourses(p, out *types.Parcel, cc *CourseCounts) {
	vertices := kmlCourses(p)
	byID := make(map[string]*types.Record, len(vertices))
	for _, r := range vertices {
		byID[j.cmp.Key(r)] = r
	}

	used := make(map[*types.Record]bool, len(vertices))
	for _, r := range p.Records() {
		if !r.Geometry || r.Source != types.SourceMBL {
			continue
		}
		v, ok := byID[types.ByMBLCompositeID.Key(r)]
		if !ok || used[v] {
			out.Add(mblRow(r))
			cc.MBLNoMatch++
			continue
		}
		used[v] = true
		row := mblRow(r)
		fillKML(row, v, p.Name)
		out.Add(row)
		cc.Joined++
	}

	for _, v := range vertices {
		if !used[v] {
			out.Add(kmlRow(v, p.Name))
			cc.KMLNoMatch++
		}
	}
}

// kmlCourses returns the placemark vertices of p that describe courses,
// leaving out centroids.
func kmlCourses(p *types.Parcel) []*types.Record {
	var out []*types.Record
	for _, r := range p.Records() {
		if r.Source != types.SourceKML || !r.Geometry {
			continue
		}
		if strings.EqualFold(r.Cell(types.KMLGType), types.GTypePoint) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func mblRow(r *types.Record) *types.Record {
	row := types.NewRecord(types.SourceMBL, true, make([]string, types.JoinedWidth)...)
	for i := 0; i < types.MBLGeometryWidth; i++ {
		row.Cells[i] = r.Cell(i)
	}
	return row
}

func kmlRow(r *types.Record, name string) *types.Record {
	row := types.NewRecord(types.SourceKML, true, make([]string, types.JoinedWidth)...)
	fillKML(row, r, name)
	return row
}

func fillKML(row, r *types.Record, name string) {
	for i := 0; i < types.KMLWidth; i++ {
		row.Cells[types.JoinedKMLOffset+i] = r.Cell(i)
	}
	row.Cells[types.JoinedKMLName] = name
}
