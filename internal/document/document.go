// Package document loads inspection templates and provides the tree walks the
// evaluator needs: flattening into leaf groupings, the condensed projection sent
// to the semantic judge, and merging of chunked extractions.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/fidelity/internal/models"
)

// Document is a loaded template together with the raw object graph it was decoded
// from. The schema validator works on Raw; everything else works on Template.
type Document struct {
	Path string
	// Raw is the decoded JSON, metadata included.
	Raw      any
	Template *models.Template
	// Metadata is the provenance block, if the file had one.
	Metadata *models.Metadata
	// Dropped lists candidate nodes that did not decode cleanly. Non-object nodes
	// were skipped; fields were kept with the properties that did decode.
	Dropped []string
}

// LoadReference reads a hand-verified template. References are decoded strictly:
// any missing property or unknown enum value is an error.
func LoadReference(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference %s: %w", path, err)
	}

	doc, err := ParseReference(data)
	if err != nil {
		return nil, fmt.Errorf("parsing reference %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// LoadCandidate reads a model-produced template. Only an unreadable file or
// invalid JSON is an error; nodes that do not decode cleanly are recorded in
// [Document.Dropped].
func LoadCandidate(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate %s: %w", path, err)
	}

	doc, err := ParseCandidate(data)
	if err != nil {
		return nil, fmt.Errorf("parsing candidate %s: %w", path, err)
	}
	doc.Path = path

	for _, d := range doc.Dropped {
		slog.Debug("Candidate node did not decode cleanly", "file", path, "node", d)
	}
	return doc, nil
}

func ParseReference(data []byte) (*Document, error) {
	raw, body, metaBlock, err := split(data)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("template must be a JSON object")
	}

	meta, err := decodeMetadata(metaBlock)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", models.MetadataKey, err)
	}

	sanitized, err := json.Marshal(Sanitize(body))
	if err != nil {
		return nil, err
	}

	var tmpl models.Template
	if err := json.Unmarshal(sanitized, &tmpl); err != nil {
		return nil, err
	}

	return &Document{Raw: raw, Template: &tmpl, Metadata: meta}, nil
}

func ParseCandidate(data []byte) (*Document, error) {
	raw, body, metaBlock, err := split(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Raw: raw, Template: &models.Template{}}
	if meta, err := decodeMetadata(metaBlock); err != nil {
		doc.Dropped = append(doc.Dropped, fmt.Sprintf("%s: %v", models.MetadataKey, err))
	} else {
		doc.Metadata = meta
	}

	if body == nil {
		doc.Dropped = append(doc.Dropped, "root: not a JSON object")
		return doc, nil
	}

	clean, _ := Sanitize(body).(map[string]any)
	doc.Template = decodeLenient(clean, &doc.Dropped)
	return doc, nil
}

// split decodes data and separates the metadata block from the template body.
// body is nil when the JSON is not an object; metaBlock is nil when there is no
// metadata object.
func split(data []byte) (raw any, body map[string]any, metaBlock map[string]any, err error) {
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return raw, nil, nil, nil
	}

	metaBlock, _ = obj[models.MetadataKey].(map[string]any)
	return raw, StripMetadata(obj), metaBlock, nil
}

// StripMetadata returns a shallow copy of obj without the metadata key.
func StripMetadata(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == models.MetadataKey {
			continue
		}
		out[k] = v
	}
	return out
}

func decodeMetadata(m map[string]any) (*models.Metadata, error) {
	if m == nil {
		return nil, nil
	}

	var meta models.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &meta,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(m); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ModelMetadata identifies who produced doc: the metadata block when present,
// otherwise the provider is guessed from the file name and the model ID is the
// file stem.
func ModelMetadata(doc *Document) models.ModelMetadata {
	stem := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))

	if doc.Metadata != nil {
		md := models.ModelMetadata{
			Provider: doc.Metadata.Provider,
			ModelID:  doc.Metadata.ModelID,
		}
		if md.Provider == "" {
			md.Provider = "unknown"
		}
		if md.ModelID == "" {
			md.ModelID = stem
		}
		if doc.Metadata.SupportingModelID != "" {
			id := doc.Metadata.SupportingModelID
			md.SupportingModelID = &id
		}
		return md
	}

	return models.ModelMetadata{
		Provider: inferProvider(stem),
		ModelID:  stem,
	}
}

var knownProviders = []string{"bedrock", "deepseek", "google", "anthropic", "openai"}

func inferProvider(stem string) string {
	lower := strings.ToLower(stem)
	for _, p := range knownProviders {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return "unknown"
}

// Usage returns the extraction cost recorded in the metadata block, if any.
func Usage(doc *Document) models.Usage {
	if doc.Metadata == nil {
		return models.Usage{}
	}
	return models.Usage{
		Cost:         doc.Metadata.Cost,
		InputTokens:  doc.Metadata.InputTokens,
		OutputTokens: doc.Metadata.OutputTokens,
	}
}
