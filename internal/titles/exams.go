package titles

// Exam is a certification exam the inference heuristic can recognise.
type Exam struct {
	Code string
	Name string
	// Fragments are lower-case phrases that identify the exam in question text.
	Fragments []string
}

// Label is the display form used for inferred titles.
func (e Exam) Label() string {
	return e.Name + " (" + e.Code + ")"
}

// KnownExams is checked in order; more specific exams come before broader
// ones that share vocabulary.
var KnownExams = []Exam{
	{Code: "AZ-104", Name: "Microsoft Azure Administrator", Fragments: []string{"azure administrator"}},
	{Code: "AZ-204", Name: "Developing Solutions for Microsoft Azure", Fragments: []string{"azure developer", "azure functions"}},
	{Code: "AZ-305", Name: "Designing Microsoft Azure Infrastructure Solutions", Fragments: []string{"azure solutions architect"}},
	{Code: "AI-900", Name: "Microsoft Azure AI Fundamentals", Fragments: []string{"azure ai", "azure machine learning", "cognitive services"}},
	{Code: "DP-900", Name: "Microsoft Azure Data Fundamentals", Fragments: []string{"azure data", "cosmos db", "azure synapse"}},
	{Code: "SC-900", Name: "Microsoft Security, Compliance, and Identity Fundamentals", Fragments: []string{"microsoft entra", "microsoft purview", "microsoft defender", "azure active directory"}},
	{Code: "MS-900", Name: "Microsoft 365 Fundamentals", Fragments: []string{"microsoft 365", "sharepoint online", "exchange online"}},
	{Code: "PL-900", Name: "Microsoft Power Platform Fundamentals", Fragments: []string{"power platform", "power apps", "power automate"}},
	{Code: "AZ-900", Name: "Microsoft Azure Fundamentals", Fragments: []string{"azure"}},
	{Code: "SAA-C03", Name: "AWS Certified Solutions Architect - Associate", Fragments: []string{"solutions architect associate", "aws well-architected"}},
	{Code: "CLF-C02", Name: "AWS Certified Cloud Practitioner", Fragments: []string{"cloud practitioner", "aws"}},
	{Code: "SY0-701", Name: "CompTIA Security+", Fragments: []string{"security+"}},
	{Code: "N10-009", Name: "CompTIA Network+", Fragments: []string{"network+"}},
	{Code: "220-1101", Name: "CompTIA A+ Core 1", Fragments: []string{"a+ core 1"}},
	{Code: "200-301", Name: "Cisco Certified Network Associate", Fragments: []string{"ccna", "cisco ios"}},
}
