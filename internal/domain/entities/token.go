package entities

import "encoding/json"

// Token represents one minted instance of a project
type Token struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	MetadataCID string `json:"metadataCid"`
	ProjectID   uint64 `json:"projectId"`
	// Serial is the 1-based rank of this token's id within its project's
	// token-id list, in list order. It is not derivable from the global id.
	Serial int `json:"serialNo"`
}

// TokenAttribute is one display attribute of a token's metadata document
type TokenAttribute struct {
	TraitType string          `json:"trait_type"`
	Value     json.RawMessage `json:"value"`
}

// TokenMetadata is the pinned metadata document of a minted token
type TokenMetadata struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	AnimationURL string           `json:"animation_url"`
	Attributes   []TokenAttribute `json:"attributes"`
}

// TokenView is a token joined with its metadata document
type TokenView struct {
	Token
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	AnimationURL string           `json:"animationUrl"`
	Attributes   []TokenAttribute `json:"attributes,omitempty"`
	ExplorerURL  string           `json:"explorerUrl,omitempty"`
	Project      *ProjectView     `json:"project,omitempty"`
}
