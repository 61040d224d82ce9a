package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem is the system prompt for structured answers.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptFreeTextSystem is the system prompt for [PPT]/[SCRIPT]/[EVIDENCE]
	// answers. This prompt has no format placeholders.
	PromptFreeTextSystem = "freetext_system"

	// PromptAnswerUser wraps the question and evidence.
	// The template expects two %s placeholders: question, then context.
	PromptAnswerUser = "answer_user"
)
