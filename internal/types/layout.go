package types

import "strconv"

// Cell positions for records produced from tract-description (MBL) lines.
//
//	{name, parcel, allFields, comments, fields, courses, value...}
//	geometry: {name, parcel, allFields, 0, 0, course, direction, distance, comment, compositeID}
const (
	MBLFieldName     = 0
	MBLParcel        = 1
	MBLAllFields     = 2
	MBLComments      = 3
	MBLFields        = 4
	MBLCourses       = 5
	MBLValue         = 6
	MBLDirection     = 6
	MBLDistance      = 7
	MBLCourseComment = 8
	MBLCompositeID   = 9

	// MBLLeadingCells is the number of fixed counter cells before the value.
	MBLLeadingCells = 6
	// MBLGeometryWidth is the cell count of a course record.
	MBLGeometryWidth = 10
)

// Cell positions for records produced from placemark (KML) files. KMLID
// holds the display name on "name" records and the id elsewhere.
const (
	KMLPID   = 0
	KMLGID   = 1
	KMLGType = 2
	KMLID    = 3
	KMLName  = 3
	KMLX     = 4
	KMLY     = 5

	KMLWidth = 6
)

// Joined course rows carry the MBL course cells, then the KML vertex cells,
// then the placemark display name.
const (
	JoinedKMLOffset = MBLGeometryWidth
	JoinedKMLName   = JoinedKMLOffset + KMLWidth
	JoinedWidth     = JoinedKMLName + 1
)

// Geometry field names in tract descriptions.
const (
	FieldLineMeander = "lm"
	FieldLine        = "ln"
	FieldLineCurve   = "lc"
	FieldPoint       = "pt"
)

// Derived and special field names.
const (
	FieldID       = "id"
	FieldLoc      = "loc"
	FieldLocSplit = "loc_tay"
	CommentPrefix = "z_cmnt"
)

// Placemark geometry types.
const (
	GTypeName       = "name"
	GTypeID         = "id"
	GTypePoint      = "Point"
	GTypeLineString = "LineString"
)

// IsGeometryField reports whether name denotes a course.
func IsGeometryField(name string) bool {
	switch name {
	case FieldLineMeander, FieldLine, FieldLineCurve, FieldPoint:
		return true
	}
	return false
}

// CompositeID builds the id shared by the n-th course of a parcel on both
// sides of a join.
func CompositeID(key string, n int) string {
	return key + "    [" + strconv.Itoa(n) + "]"
}
