package entities

import "math/big"

// UnlimitedEditions is the registry's reserved max-editions sentinel
// (2^256 - 1). A project carrying it has no edition cap and must never
// compare as sold out.
var UnlimitedEditions = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Project represents a published generative template
type Project struct {
	ID            uint64   `json:"id"`
	Author        string   `json:"author"`
	CodeCID       string   `json:"codeCid"`
	ParametersCID string   `json:"parametersCid"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	License       string   `json:"license"`
	PricePerToken *big.Int `json:"-"`
	MaxEditions   *big.Int `json:"-"`
	Paused        bool     `json:"isPaused"`
}

// IsUnlimited reports whether the project carries the unlimited-editions
// sentinel.
func (p *Project) IsUnlimited() bool {
	return p.MaxEditions != nil && p.MaxEditions.Cmp(UnlimitedEditions) == 0
}

// SoldOut reports whether numTokens exhausts the edition cap. Always false
// for unlimited projects.
func (p *Project) SoldOut(numTokens int) bool {
	if p.IsUnlimited() || p.MaxEditions == nil {
		return false
	}
	return big.NewInt(int64(numTokens)).Cmp(p.MaxEditions) >= 0
}

// MaxEditionsDisplay renders the edition cap for display, with the sentinel
// shown as unlimited.
func (p *Project) MaxEditionsDisplay() string {
	if p.IsUnlimited() {
		return "unlimited"
	}
	if p.MaxEditions == nil {
		return "0"
	}
	return p.MaxEditions.String()
}

// PriceString returns the price in the chain's smallest unit as a decimal
// string.
func (p *Project) PriceString() string {
	if p.PricePerToken == nil {
		return "0"
	}
	return p.PricePerToken.String()
}

// ProjectView is a project joined with per-view derived data
type ProjectView struct {
	Project
	PricePerTokenInWei string      `json:"pricePerTokenInWei"`
	MaxNumEditions     string      `json:"maxNumEditions"`
	NumTokens          int         `json:"numTokens"`
	PreviewURL         string      `json:"previewUrl,omitempty"`
	Parameters         []Parameter `json:"parameters,omitempty"`
	NextSerial         int         `json:"nextSerial,omitempty"`
}

// NewProjectView builds the serialized view of a project. Big integers go
// out as decimal strings; the sentinel stays the raw constant so clients can
// special-case it the same way everywhere.
func NewProjectView(p *Project, numTokens int) ProjectView {
	return ProjectView{
		Project:            *p,
		PricePerTokenInWei: p.PriceString(),
		MaxNumEditions:     p.MaxEditionsDisplay(),
		NumTokens:          numTokens,
		NextSerial:         numTokens + 1,
	}
}
