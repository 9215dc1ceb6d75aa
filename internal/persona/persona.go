// Package persona provides a fixed catalog of synthetic caller
// personas so the evaluator can be exercised without an upload.
package persona

import "github.com/sells-group/convoeval/internal/model"

// Persona is one synthetic caller profile with a canned transcript.
type Persona struct {
	Name        string
	Description string
	Transcript  string
}

// Catalog returns the fixed persona set, in stable order.
func Catalog() []Persona {
	return []Persona{
		{
			Name:        "frustrated",
			Description: "caller who has already tried multiple times and is losing patience",
			Transcript: "This is the third time I've called about this! I'm so frustrated. " +
				"My prescription refill was supposed to be ready days ago. " +
				"Agent: I'm sorry for the trouble, I understand how frustrating that is. Let me help you right now. " +
				"I can see the refill request, and I'm sending it to your pharmacy today.",
		},
		{
			Name:        "non_native",
			Description: "caller with limited English proficiency",
			Transcript: "Hello, I need make appointment for doctor. My english not so good, sorry. " +
				"Agent: No problem at all, I can help you. Would you like an appointment this week or next week? " +
				"Next week is good. Thursday? " +
				"Agent: Of course, Thursday at 10am is booked for you.",
		},
		{
			Name:        "fast_speaker",
			Description: "caller who rushes and packs several requests into one turn",
			Transcript: "Hi yes I need to reschedule my appointment and also check if my lab results are in " +
				"and can you tell me if my insurance covers the specialist visit? " +
				"Agent: Let me take those one at a time. First, I'll reschedule your appointment. " +
				"Your lab results are available, and yes, the specialist visit is covered.",
		},
		{
			Name:        "elderly",
			Description: "older caller who needs things repeated slowly",
			Transcript: "Hello dear, I'm calling about my medication. Could you speak slowly please? " +
				"I don't understand these new instructions. " +
				"Agent: Of course, let me go slowly. Take one tablet in the morning with food. " +
				"Thank you so much, I appreciate your patience. That was wonderful.",
		},
		{
			Name:        "vague",
			Description: "caller who cannot articulate what they need",
			Transcript: "Hi, um, I'm calling about... the thing from last time? There was something wrong I think. " +
				"Agent: I'd be happy to help. Could you tell me a bit more? Was it about an appointment, a bill, or a prescription? " +
				"Oh, the bill maybe? Something looked off.",
		},
	}
}

// Conversations renders the catalog into deterministic conversation
// records.
func Conversations() []model.Conversation {
	personas := Catalog()
	convs := make([]model.Conversation, len(personas))
	for i, p := range personas {
		convs[i] = model.Conversation{
			ID:    "persona_" + p.Name,
			Title: "Persona: " + p.Name,
			Text:  p.Transcript,
		}
	}
	return convs
}
