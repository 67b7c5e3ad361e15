package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OperationID is the operation the client resolves from the document.
const OperationID = "breakDownGoal"

//go:embed openapi.json
var embeddedDocument []byte

// Endpoint describes where and how the breakdown request is sent.
type Endpoint struct {
	Method      string
	Path        string
	ContentType string
}

// Contract wraps the loaded OpenAPI document and the resolved breakdown
// operation.
type Contract struct {
	doc       *openapi3.T
	operation *openapi3.Operation
	endpoint  Endpoint
}

// EmbeddedDocument returns a copy of the built-in OpenAPI document.
func EmbeddedDocument() []byte {
	out := make([]byte, len(embeddedDocument))
	copy(out, embeddedDocument)
	return out
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return LoadFromData(ctx, embeddedDocument)
}

// LoadFromData parses and validates an OpenAPI document and resolves the
// breakDownGoal operation from it.
func LoadFromData(ctx context.Context, raw []byte) (*Contract, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}

	paths := make([]string, 0, doc.Paths.Len())
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID != OperationID {
				continue
			}
			return &Contract{
				doc:       doc,
				operation: op,
				endpoint: Endpoint{
					Method:      strings.ToUpper(method),
					Path:        path,
					ContentType: requestContentType(op),
				},
			}, nil
		}
	}
	return nil, fmt.Errorf("contract: operation %q not found", OperationID)
}

// Endpoint returns the resolved method, path and request content type.
func (c *Contract) Endpoint() Endpoint {
	if c == nil {
		return Endpoint{}
	}
	return c.endpoint
}

// Version reports the document's info.version.
func (c *Contract) Version() string {
	if c == nil || c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Version
}

// ValidateResponse checks a decoded JSON payload against the schema declared
// for the status code, falling back to the "default" response. Statuses
// without a declared JSON schema are accepted.
func (c *Contract) ValidateResponse(status int, payload any) error {
	if c == nil || c.operation == nil || c.operation.Responses == nil {
		return nil
	}

	ref := c.operation.Responses.Value(strconv.Itoa(status))
	if ref == nil {
		ref = c.operation.Responses.Value("default")
	}
	if ref == nil || ref.Value == nil {
		return nil
	}
	media, ok := ref.Value.Content["application/json"]
	if !ok || media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}

	if err := media.Schema.Value.VisitJSON(payload); err != nil {
		return fmt.Errorf("contract: response %d does not match schema: %w", status, err)
	}
	return nil
}

func requestContentType(op *openapi3.Operation) string {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return "application/x-www-form-urlencoded"
	}
	content := op.RequestBody.Value.Content
	if _, ok := content["application/x-www-form-urlencoded"]; ok {
		return "application/x-www-form-urlencoded"
	}
	types := make([]string, 0, len(content))
	for mediaType := range content {
		types = append(types, mediaType)
	}
	if len(types) == 0 {
		return "application/x-www-form-urlencoded"
	}
	sort.Strings(types)
	return types[0]
}
