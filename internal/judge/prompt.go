package judge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spboyer/fidelity/internal/validation"
)

// maxPromptErrors is how many schema errors are listed in a prompt.
const maxPromptErrors = 20

// submitToolName is the tool the judge calls with its verdict.
const submitToolName = "submit_template_evaluation"

const promptHeader = `You are an evaluation assistant comparing inspection template JSON outputs. Compare the model output against the source of truth.

## Task
For each field pair, evaluate:
1. **name_similarity** (0.0-1.0): How semantically similar are the field names?
   - 1.0: Same meaning (e.g., "Smoke Detectors" vs "Smoke detectors")
   - 0.8-0.9: Minor wording difference (e.g., "Doors and Locks" vs "Doors and lock")
   - 0.5-0.7: Related but different
   - 0.0-0.4: Different concepts
2. **options_similarity** (0.0-1.0): How similar are the options?
   - 1.0: Same options (case-insensitive)
   - 0.9: Same options, different casing or order
   - 0.5-0.8: Most options match
   - 0.0-0.4: Very different options
3. **reasoning**: Brief explanation (max 50 words)
`

const promptInstructions = `## Instructions
- Compare each source section with the corresponding model section
- Match fields by semantic similarity, not just position
- If a model section is missing, set name_similarity to 0.0 for all its fields
- Be lenient with abbreviations (e.g., "Elec." = "Electrical", "int." = "interior")
- Consider typos in section names (e.g., "Dinning" vs "Dining" should still score 0.9+)

## Output Format
Call the ` + submitToolName + ` tool with your evaluation. If you cannot call tools, reply with ONLY valid JSON of this shape (no markdown, no explanation):
{
  "sections": [
    {
      "source_section_name": "Section Name",
      "model_section_name": "Model Section Name or null",
      "name_similarity": 0.95,
      "fields": [
        {
          "source_field_id": 1,
          "model_field_id": 1,
          "name_similarity": 0.95,
          "options_similarity": 0.90,
          "reasoning": "Brief explanation"
        }
      ]
    }
  ],
  "overall_assessment": "Brief overall assessment of model quality"
}
`

// BuildPrompt renders the judge prompt for req.
func BuildPrompt(req *Request) (string, error) {
	ref, err := json.MarshalIndent(req.Reference, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding reference: %w", err)
	}
	cand, err := json.MarshalIndent(req.Candidate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding candidate: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(promptHeader)
	sb.WriteString("\n## Schema Validation Errors Found\n")
	sb.WriteString(validation.FormatErrors(req.Schema, maxPromptErrors))
	sb.WriteString("\n\n## Source of Truth (Reference)\n")
	sb.Write(ref)
	sb.WriteString("\n\n## Model Output (To Evaluate)\n")
	sb.Write(cand)
	sb.WriteString("\n\n")
	sb.WriteString(promptInstructions)
	return sb.String(), nil
}

// ParseResponse decodes a judge's text answer, tolerating a Markdown code fence
// around the JSON.
func ParseResponse(text string) (*Response, error) {
	text = stripFence(text)
	if text == "" {
		return nil, errors.New("empty judge response")
	}

	var resp Response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("decoding judge response: %w", err)
	}
	resp.clamp()
	return &resp, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
