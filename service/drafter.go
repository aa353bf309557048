package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appealdraft-backend/models"

	"github.com/google/generative-ai-go/genai"
)

// Drafter turns a structured fact sheet into formal appeal letter prose.
// The pipeline injects it so tests can substitute fakes.
type Drafter interface {
	Draft(ctx context.Context, sheet FactSheet) (string, error)
}

// notProvided is the explicit placeholder passed to the drafter for any
// fact the claimant never supplied. Missing facts must not fail drafting.
const notProvided = "not provided"

// FactSheet is the fixed-shape input the drafter works from, assembled from
// an appeal's open-ended parsed data.
type FactSheet struct {
	FirstName         string
	LastName          string
	DateOfBirth       string
	PolicyNumber      string
	ClaimNumber       string
	InsuranceProvider string
	InsuranceAddress  string
	PhysicianName     string
	PhysicianAddress  string
	PhysicianPhone    string
	PhysicianEmail    string
	ProcedureName     string
	DenialReason      string
	AdditionalDetails string
	AppealerFirstName string
	AppealerLastName  string
	AppealerRelation  string
	AppealerAddress   string
	AppealerEmail     string
	AppealerPhone     string
}

// BuildFactSheet maps parsed data onto the fixed fact-sheet shape. Every
// absent key becomes the "not provided" placeholder, never a hard failure.
func BuildFactSheet(facts models.ParsedData) FactSheet {
	get := func(key string) string {
		if v, ok := facts[key]; ok && strings.TrimSpace(v) != "" {
			return v
		}
		return notProvided
	}

	return FactSheet{
		FirstName:         get("firstName"),
		LastName:          get("lastName"),
		DateOfBirth:       get("dob"),
		PolicyNumber:      get("policyNumber"),
		ClaimNumber:       get("claimNumber"),
		InsuranceProvider: get("insuranceProvider"),
		InsuranceAddress:  get("insuranceAddress"),
		PhysicianName:     get("physicianName"),
		PhysicianAddress:  get("physicianAddress"),
		PhysicianPhone:    get("physicianPhone"),
		PhysicianEmail:    get("physicianEmail"),
		ProcedureName:     get("procedureName"),
		DenialReason:      get("denialReason"),
		AdditionalDetails: get("additionalDetails"),
		AppealerFirstName: get("appealerFirstName"),
		AppealerLastName:  get("appealerLastName"),
		AppealerRelation:  get("appealerRelation"),
		AppealerAddress:   get("appealerAddress"),
		AppealerEmail:     get("appealerEmailAddress"),
		AppealerPhone:     get("appealerPhoneNumber"),
	}
}

// Prompt renders the drafting instructions and fact sheet into the text
// sent to the generation model.
func (f FactSheet) Prompt() string {
	return fmt.Sprintf(`You are a professional medical appeals assistant. Your task is to draft a formal and comprehensive appeal letter based on the information provided. The letter should be well-structured, persuasive, and ready to be printed and mailed. Your goal is to help the patient get their denied claim approved by presenting a compelling, well-structured argument.

Guidelines:
- Use a professional, respectful tone
- Structure the letter clearly with proper formatting
- Include specific medical and policy details
- Present logical arguments supported by evidence
- Be concise but comprehensive
- End with a clear call to action

### Patient Information
- Name: %s %s
- Date of Birth: %s
- Policy Number: %s
- Claim Number: %s
- Insurance Provider: %s
- Insurance Provider's Address: %s

### Medical Details
- Treating Physician: %s
- Physician's Address: %s
- Physician's Phone: %s
- Physician's Email: %s
- Procedure/Service in Question: %s
- Reason for Denial: %s
- Additional Details regarding the medical necessity: %s

### Appealer Information
- Name: %s %s
- Relationship to Patient: %s
- Address: %s
- Email: %s
- Phone Number: %s`,
		f.FirstName, f.LastName,
		f.DateOfBirth,
		f.PolicyNumber,
		f.ClaimNumber,
		f.InsuranceProvider,
		f.InsuranceAddress,
		f.PhysicianName,
		f.PhysicianAddress,
		f.PhysicianPhone,
		f.PhysicianEmail,
		f.ProcedureName,
		f.DenialReason,
		f.AdditionalDetails,
		f.AppealerFirstName, f.AppealerLastName,
		f.AppealerRelation,
		f.AppealerAddress,
		f.AppealerEmail,
		f.AppealerPhone,
	)
}

// GeminiDrafter generates appeal letter prose with the Gemini API
type GeminiDrafter struct {
	client *genai.Client
	model  string
}

// NewGeminiDrafter creates a drafter over an initialized Gemini client
func NewGeminiDrafter(client *genai.Client) *GeminiDrafter {
	return &GeminiDrafter{
		client: client,
		model:  "gemini-1.5-flash",
	}
}

// Draft generates the letter text for the fact sheet. An empty model
// response is an error: the caller must never persist an empty letter.
func (d *GeminiDrafter) Draft(ctx context.Context, sheet FactSheet) (string, error) {
	if d.client == nil {
		return "", errors.New("gemini client not set")
	}

	model := d.client.GenerativeModel(d.model)
	resp, err := model.GenerateContent(ctx, genai.Text(sheet.Prompt()))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no text generated")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	letter := strings.TrimSpace(builder.String())
	if letter == "" {
		return "", errors.New("no text generated")
	}
	return letter, nil
}
