package inventory

// Resolution is the outcome of resolving a scanned code.
type Resolution struct {
	// Code is the normalized scanned code.
	Code string `json:"code"`
	// BoxID is the canonical box identifier.
	BoxID string `json:"box_id"`
	// WasAlias is set when Code was found in the alias table.
	WasAlias bool `json:"was_alias"`
	// Known is false when Code matched neither a mapped box nor an alias;
	// BoxID is then Code itself, treated as a new box.
	Known bool `json:"known"`
}

// Resolve maps a scanned code to a box identifier.
// Mapped box ids take precedence over alias codes.
func (ix *ReferenceIndex) Resolve(rawCode string) Resolution {
	code := Normalize(rawCode)
	res := Resolution{Code: code, BoxID: code}
	if code == "" {
		return res
	}

	if _, ok := ix.Mapping(code); ok {
		res.Known = true
		return res
	}
	if owner, ok := ix.AliasOwner(code); ok {
		res.BoxID = owner
		res.WasAlias = true
		res.Known = true
	}
	return res
}

// Warnings lists the non-fatal lookup misses of a resolution.
func (r Resolution) Warnings() []string {
	if r.Known || r.Code == "" {
		return nil
	}
	return []string{WarnUnknownAlias}
}
