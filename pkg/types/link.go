package types

// SymlinkDescriptor is a snapshot of a link taken at the start of an edit
// session. StoredTarget is the literal string recorded in the link and is
// never the same thing as the resolved target.
type SymlinkDescriptor struct {
	Location     string
	StoredTarget string
}

// IsRelative reports whether the stored target is relative to the link's
// directory
func (d *SymlinkDescriptor) IsRelative() bool {
	return d.StoredTarget != "" && d.StoredTarget[0] != '/'
}

// CandidateSet holds replacement targets for a link. Each value is legal as a
// new stored target. RootRelative is empty when no root marker resolved.
type CandidateSet struct {
	Absolute     string
	LinkRelative string
	RootRelative string
}

// Values returns the non-empty candidates, absolute first
func (c *CandidateSet) Values() []string {
	var values []string
	for _, v := range []string{c.Absolute, c.LinkRelative, c.RootRelative} {
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

// ReplacementPlan describes a single create-or-replace of a link
type ReplacementPlan struct {
	// OriginLink is the link the edit session started from
	OriginLink string
	// NewLinkName is where the new link is written; usually OriginLink
	NewLinkName string
	// NewTarget is written verbatim as the new stored target
	NewTarget string

	AllowBroken bool
	SaveBackup  bool

	// RemoveOrigin deletes OriginLink after a successful replace when the
	// link was renamed
	RemoveOrigin bool
}

// Renamed reports whether the plan writes the link under a new name
func (p *ReplacementPlan) Renamed() bool {
	return p.OriginLink != "" && p.OriginLink != p.NewLinkName
}

// SwapPlan exchanges a real directory (OldLocation) with the link location
// that is supposed to point at it (NewLocation)
type SwapPlan struct {
	OldLocation string
	NewLocation string
	Relative    bool
}

// RelocatePlan moves Source to Destination and leaves a link behind
type RelocatePlan struct {
	Source      string
	Destination string
	Relative    bool
}
