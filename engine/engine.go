package engine

import "clausewise-backend/models"

// AnalyzeQuery runs the full rule-based pipeline over a free-text question
// and a clause corpus: extract structured fields, select relevant clauses,
// evaluate the coverage criteria. The corpus is supplied by the caller;
// the engine holds no ambient state.
func AnalyzeQuery(text string, corpus []string) models.ProcessingResult {
	query := ExtractQuery(text)
	relevant := SelectRelevantClauses(query, corpus)
	return Decide(query, relevant)
}

// ProcessDocument extracts clause candidates from raw document text. It is
// the ingestion-time counterpart of AnalyzeQuery.
func ProcessDocument(text string) []models.ClauseCandidate {
	return ExtractClauses(text)
}
