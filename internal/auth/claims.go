package auth

// BuildClaims maps a principal to the claim set embedded in its tokens.
// Deterministic for a given principal state; the resource list is copied so
// later mutations of the principal do not leak into issued claims.
func BuildClaims(p *Principal) Claims {
	var resources []string
	if len(p.Resources) > 0 {
		resources = make([]string, len(p.Resources))
		copy(resources, p.Resources)
	}
	return Claims{
		Subject:   p.ExternalID,
		Role:      p.Role,
		Resources: resources,
	}
}
