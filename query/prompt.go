package query

import "strings"

const answerInstructions = `You are a helpful assistant.
Keep responses short and grounded in the provided context.
Return your answer ONLY as valid JSON in the following format:

{
  "answer": string,
  "timestamp": string  // HH:MM:SS
}

Use the timestamp from the context that supports the answer.
The answer field should include an instruction suggesting the user to watch from the timestamp onwards.
If the user query is not present in or related to the provided context, answer using your own general knowledge, set the timestamp to "00:00:00", and say that the answer is not covered by the video.
Do not include any text outside the JSON.`

// buildSystemPrompt assembles the answer instructions, the user's stored
// preferences, and the retrieved transcript passages into one system prompt.
// The memory block sits above the transcript context, separated by a
// delimiter so the model does not cite preferences as video content.
func buildSystemPrompt(memoryBlock string, passages []string) string {
	var b strings.Builder
	b.WriteString(answerInstructions)

	if memoryBlock != "" {
		b.WriteString("\n\n")
		b.WriteString(memoryBlock)
		b.WriteString("\n---")
	}

	if len(passages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(passages, "\n\n"))
	}

	return b.String()
}
