package models

import "time"

// AnalysisResult represents the four-part assessment returned by the analysis collaborator
type AnalysisResult struct {
	ScopePlan          string `json:"scopePlan"`
	RequirementsMatrix string `json:"requirementsMatrix"`
	AdvisoryWarnings   string `json:"advisoryWarnings"`
	GapAnalysis        string `json:"gapAnalysis"`
}

// AnalysisRecord represents a saved analysis run
type AnalysisRecord struct {
	Project      ProjectData    `json:"project"`
	Result       AnalysisResult `json:"result"`
	AnalysisTime time.Time      `json:"analysis_time"`
	Provider     string         `json:"provider"`
	Model        string         `json:"model"`
}

// Disclaimer accompanies every presented gap analysis
const Disclaimer = "Disclaimer: This output is for educational purposes only and follows PMBOK® 8 methodologies. No professional guarantees are provided. Final decisions rest with the project manager."

// Section is one titled panel of an AnalysisResult
type Section struct {
	Key   string
	Title string
	Body  string
}

// Sections returns the result panels in presentation order
func (r AnalysisResult) Sections() []Section {
	return []Section{
		{Key: "advisoryWarnings", Title: "AI Advisory Warnings", Body: r.AdvisoryWarnings},
		{Key: "scopePlan", Title: "2.1 Plan Scope Management", Body: r.ScopePlan},
		{Key: "requirementsMatrix", Title: "2.2 Elicit & Analyze Requirements", Body: r.RequirementsMatrix},
		{Key: "gapAnalysis", Title: "PM Gap & Risk Analysis", Body: r.GapAnalysis},
	}
}
