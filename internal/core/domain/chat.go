package domain

// ChatRequest is one inbound user message.
type ChatRequest struct {
	Message        string
	ConversationID string
	Profile        *UserProfile
}

// ChatResult is the orchestrator's reply: the generated text, the filtered
// candidate set it was grounded on, and the retrieval stats.
type ChatResult struct {
	Response       string
	Matches        []ScoredCandidate
	ConversationID string
	Retrieval      RetrievalStats
}
