package services

import "fmt"

// NoRelevantAnswer is returned when no chunk of the document matches.
const NoRelevantAnswer = "I wasn't able to find relevant answers to your questions."

// ProcessingFailedMessage is the public message for failed questions.
const ProcessingFailedMessage = "An error occurred while processing your request."

// UploadFailedMessage is the public message for failed uploads.
const UploadFailedMessage = "Error uploading file"

const summaryPromptPrefix = "Summarize the following document in a clear, concise manner: \n"

const answerPromptTemplate = `You are a help assistant. Answer the question based on the context provided below, please answer the question accurately and concisely. If context doesn't contain relevant information, say "I don't know".
Context: %s
Question: %s
Answer:`

func summaryPrompt(text string) string {
	return summaryPromptPrefix + text
}

func answerPrompt(context, question string) string {
	return fmt.Sprintf(answerPromptTemplate, context, question)
}
