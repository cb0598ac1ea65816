// Package prompts holds the named instruction templates that steer the
// refinement model.
package prompts

const (
	General     = "general"
	Coding      = "coding"
	Punctuation = "punctuation"
)

var builtins = []Entry{
	{
		Name: General,
		Text: `You are a text cleanup assistant. Fix any transcription errors, formatting issues, and improve readability. Keep the same meaning but make it more natural and correctly formatted. Do not add extra information or change the meaning.

Rules:
- Fix obvious transcription errors
- Correct punctuation and capitalization
- Keep the text concise
- Return ONLY the cleaned text, nothing else`,
	},
	{
		Name: Coding,
		Text: `You are a coding transcription cleanup assistant. Fix transcription errors and format code-related content properly.

Rules:
- Convert spoken file references to proper format (e.g., "main dot py" → "main.py")
- Format code variable names properly (e.g., "get user by ID" → "getUserById")
- Use @ symbol for file mentions when appropriate (e.g., "in the file main dot py" → "in the file @main.py")
- Fix technical terminology and programming language names
- Keep code snippets and commands properly formatted
- Return ONLY the cleaned text, nothing else`,
	},
	{
		Name: Punctuation,
		Text: `You are a punctuation assistant. Add proper punctuation and capitalization to transcribed text while keeping it natural.

Rules:
- Add periods, commas, and appropriate punctuation
- Capitalize sentence beginnings and proper nouns
- Keep the exact same words, only fix punctuation
- Return ONLY the cleaned text, nothing else`,
	},
}

type Entry struct {
	Name string
	Text string
}

// Set maps prompt names to instruction text. Names keep the order in which
// they were first inserted.
type Set struct {
	names []string
	texts map[string]string
}

func NewSet() *Set {
	return &Set{texts: make(map[string]string)}
}

// Builtin returns a fresh Set seeded with the general, coding and punctuation
// templates.
func Builtin() *Set {
	s := NewSet()
	Apply(s, builtins)
	return s
}

// Put inserts name or replaces its whole text.
func (s *Set) Put(name, text string) {
	if _, ok := s.texts[name]; !ok {
		s.names = append(s.names, name)
	}
	s.texts[name] = text
}

func (s *Set) Lookup(name string) (string, bool) {
	text, ok := s.texts[name]
	return text, ok
}

// Resolve returns the template registered under name, or the general template
// when name is unknown. The returned name is the one actually used.
func (s *Set) Resolve(name string) (string, string) {
	if text, ok := s.texts[name]; ok {
		return name, text
	}
	return General, s.texts[General]
}

func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Set) Len() int {
	return len(s.names)
}

// Apply writes entries into s one by one, later entries winning.
func Apply(s *Set, entries []Entry) {
	for _, entry := range entries {
		s.Put(entry.Name, entry.Text)
	}
}
