package ai

const CompletePrompt = `You are a helpful assistant. Complete the given sentence or prompt in a natural and contextually appropriate way.`

const CompleteContextPrompt = `You are a helpful assistant. Use the provided context to complete the given sentence or prompt in a natural and contextually appropriate way.`

// CompleteContextTemplate takes the context and the sentence to complete.
const CompleteContextTemplate = "Context:\n%s\n\nComplete this sentence: %s"

const RagPrompt = `You are a helpful assistant. Answer the user's question based on the provided context. Use the information available to provide a useful answer, even if you need to infer from related concepts. If you cannot provide any relevant answer from the context, then say so. Do not use external knowledge beyond what's in the context.`

const RagStrictPrompt = `You are a helpful assistant. Answer the user's question using only the provided context. If the context does not contain the information needed to answer, reply with exactly "I don't know" and nothing else. Do not use external knowledge beyond what's in the context.`

// RagTemplate takes the context and the question.
const RagTemplate = "Context:\n%s\n\nQuestion: %s"

const ExtractJSONPrompt = `You are a data extraction expert. Extract the requested information from the provided text and return it as valid JSON. Be thorough and accurate. Return only the JSON object, no additional text or explanation.`

// ExtractJSONTemplate takes the request and the text.
const ExtractJSONTemplate = "Extract the following information from this text: %s\n\nText to analyze:\n%s\n\nReturn the extracted information as a well-structured JSON object with appropriate field names and data types."

const ExtractExecutablePrompt = `You are a code generation expert. Based on the extracted information, generate actual executable code such as SQL queries, API calls, function invocations, or other programming commands that would use this data. Be practical and realistic.`

// ExtractExecutableTemplate takes the request and the text.
const ExtractExecutableTemplate = "Based on this request: %s\n\nText to analyze:\n%s\n\nGenerate actual executable code that would accomplish the task described. This could be SQL queries, JavaScript function calls, API requests, or other programming commands. Include comments and make it production-ready."

const ExtractStructuredPrompt = `You are a data extraction expert. Extract the requested information from the provided text and present it in a clear, organized, human-readable format. Be thorough and accurate.`

// ExtractStructuredTemplate takes the request and the text.
const ExtractStructuredTemplate = "Extract the following information from this text: %s\n\nText to analyze:\n%s\n\nPresent the extracted information in a clear, organized format that would be easy for humans to read and understand."

const EntitiesPrompt = `Extract all entities from this text and categorize them by type (e.g., TECHNOLOGY, PERSON, CONCEPT, APPLICATION, etc.). List each entity with its category.`

const RelationshipsPrompt = `Identify key relationships between entities in this text. Format as "Entity A -> relates to -> Entity B" with a brief description of the relationship.`

const HubsPrompt = `Organize the entities from this text into 3-5 main hub categories. For each hub category, list the entities that belong to it. Format your response like this:

HUB_NAME:
- Entity 1
- Entity 2
- Entity 3

Next category and so on. Be specific and clear with entity names.`

const GraphExtractPrompt = `
# Task Context
You are a knowledge graph builder. You turn a short text into typed entities and the relationships between them.
The text is the user message.

# Detailed Task Description & Rules
- Extract every meaningful entity (people, tools, concepts, places, organizations, techniques).
- Give each entity a short canonical name as its id. Ids must be unique.
- Give each entity one uppercase type such as PERSON, TECHNOLOGY, CONCEPT, APPLICATION.
%s
- Extract relationships only between entities you listed. Use their exact ids for "from" and "to".
- Describe each relationship in a few words ("is used for", "invented", "requires").
- Do not invent facts that are not in the text.

# Output Formatting
Return JSON matching the provided schema.
`

// GraphTypesRule restricts the entity types; it takes a comma separated list.
const GraphTypesRule = "- Only use these entity types: %s."

const CompareModelsPrompt = `You are a helpful assistant. Answer the question directly and briefly.`
