package usecases

import (
	"fmt"
	"net/url"
	"strings"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
)

// DerivationUsecase deterministically derives a token's render URL and
// metadata document from a project's code, parameter schema and the
// supplied arguments. Same inputs always yield byte-identical output.
type DerivationUsecase struct {
	subdomainGatewayHost string
	maxParameters        int
}

// NewDerivationUsecase creates a new derivation usecase
func NewDerivationUsecase(subdomainGatewayHost string, maxParameters int) *DerivationUsecase {
	return &DerivationUsecase{
		subdomainGatewayHost: subdomainGatewayHost,
		maxParameters:        maxParameters,
	}
}

// ValidateArgs checks a schema/argument pairing without touching the
// network. Every schema key must have exactly one argument; duplicate keys
// and unknown parameter kinds reject the whole set.
func (u *DerivationUsecase) ValidateArgs(params []entities.Parameter, args entities.ArgumentSet) error {
	if u.maxParameters > 0 && len(params) > u.maxParameters {
		return domainerrors.TooManyParameters(
			fmt.Sprintf("schema declares %d parameters, limit is %d", len(params), u.maxParameters))
	}

	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Key == "" {
			return domainerrors.Validation("parameter key must not be empty")
		}
		if seen[p.Key] {
			return domainerrors.DuplicateParameterKey(p.Key)
		}
		seen[p.Key] = true
		if !p.Kind.Valid() {
			return domainerrors.Validation("unknown parameter type: " + string(p.Kind))
		}
		if _, ok := args.Get(p.Key); !ok {
			return domainerrors.MissingArgument(p.Key)
		}
	}

	argSeen := make(map[string]bool, len(args))
	for _, a := range args {
		if argSeen[a.Key] {
			return domainerrors.DuplicateParameterKey(a.Key)
		}
		argSeen[a.Key] = true
	}
	return nil
}

// RenderURL builds the live-render URL for a token. The artifact is served
// from a subdomain gateway so its origin is isolated per CID; the minting
// address and the arguments ride in as query parameters. Argument order in
// the query string follows the supplied order exactly, which keeps the URL
// (and therefore the metadata document) reproducible.
func (u *DerivationUsecase) RenderURL(codeCID, address string, args entities.ArgumentSet) string {
	var sb strings.Builder
	sb.WriteString("https://")
	sb.WriteString(codeCID)
	sb.WriteString(".ipfs.")
	sb.WriteString(u.subdomainGatewayHost)
	sb.WriteString("/?address=")
	sb.WriteString(url.QueryEscape(address))
	for _, a := range args {
		sb.WriteByte('&')
		sb.WriteString(url.QueryEscape(a.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(a.Value))
	}
	return sb.String()
}

// BuildMetadata assembles the token metadata document. Attributes appear in
// schema declaration order regardless of the order arguments were supplied,
// using each parameter's display name and kind-coerced value.
func (u *DerivationUsecase) BuildMetadata(project *entities.Project, address string, params []entities.Parameter, args entities.ArgumentSet) (*entities.TokenMetadata, error) {
	if err := u.ValidateArgs(params, args); err != nil {
		return nil, err
	}

	attributes := make([]entities.TokenAttribute, 0, len(params))
	for _, p := range params {
		value, _ := args.Get(p.Key)
		attributes = append(attributes, entities.TokenAttribute{
			TraitType: p.Name,
			Value:     p.AttributeValue(value),
		})
	}

	return &entities.TokenMetadata{
		Name:         project.Name,
		Description:  project.Description,
		AnimationURL: u.RenderURL(project.CodeCID, address, args),
		Attributes:   attributes,
	}, nil
}
