// Package summarize produces short Spanish summaries of uploaded judicial
// documents using Gemini.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for document summaries.
const DefaultModelName = "gemini-2.0-flash"

// Summarizer sends documents to Gemini and returns plain-text summaries.
type Summarizer struct {
	model string
}

// New creates a summarizer. An empty model falls back to DefaultModelName.
func New(model string) *Summarizer {
	if model == "" {
		model = DefaultModelName
	}
	return &Summarizer{model: model}
}

// SummarizePDF returns a short Spanish summary of the attached PDF.
func (s *Summarizer) SummarizePDF(ctx context.Context, pdfBytes []byte) (string, error) {
	prompt :=
		"Eres un asistente jurídico. El documento adjunto es una sentencia o acto " +
			"administrativo relacionado con pagos a pensionados.\n\n" +
			"Tarea:\n" +
			"- Resume el documento en español, en máximo cinco frases.\n" +
			"- Menciona los conceptos de pago ordenados y los montos si aparecen.\n" +
			"- Responde SOLO con el texto del resumen, sin encabezados ni Markdown.\n"

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("SummarizePDF: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     pdfBytes,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("SummarizePDF: generate content: %w", err)
	}

	text := cleanModelText(resp.Text())
	if text == "" {
		return "", fmt.Errorf("SummarizePDF: empty response from model")
	}
	return text, nil
}

// cleanModelText strips Markdown fences the model sometimes adds despite
// instructions.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
