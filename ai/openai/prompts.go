package openai

const classificationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "category_one": {
      "type": "object",
      "properties": {
        "probability": {"type": "number", "minimum": 0, "maximum": 1}
      },
      "required": ["probability"],
      "additionalProperties": false
    },
    "category_two": {
      "type": "object",
      "properties": {
        "probability": {"type": "number", "minimum": 0, "maximum": 1}
      },
      "required": ["probability"],
      "additionalProperties": false
    }
  },
  "required": ["category_one", "category_two"],
  "additionalProperties": false
}`

const classificationPrompt = `Classify the given chat transcript as personal or work-related and return
probabilities as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

` + classificationResponseSchema + `

Rules:
- "category_one" is the probability that the conversation is personal.
- "category_two" is the probability that the conversation is work-related.
- Probabilities are numbers between 0 and 1 and should sum to approximately 1.
- Judge from the conversation content only. Do not hallucinate context that is not present.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text
  outside the object.

Example (work-related):
Input: "Can you draft the Q3 budget review for the finance sync tomorrow?"
Output:
{
  "category_one": {"probability": 0.05},
  "category_two": {"probability": 0.95}
}

Example (personal):
Input: "what should i cook for my mom's birthday dinner"
Output:
{
  "category_one": {"probability": 0.92},
  "category_two": {"probability": 0.08}
}`
