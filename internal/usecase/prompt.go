package usecase

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

var answerPrompt = template.Must(template.ParseFS(promptTemplates, "templates/answer_prompt.txt"))

// PromptData is the input of the answer prompt template.
type PromptData struct {
	Question string
	Context  string
}

// BuildPrompt fills the answer template. Question and context are inserted
// verbatim.
func BuildPrompt(question, context string) string {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail.
	if err := answerPrompt.Execute(&buf, PromptData{Question: question, Context: context}); err != nil {
		panic(err)
	}
	return buf.String()
}
