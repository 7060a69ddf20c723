package patients

import "errors"

// ErrNotFound indicates no patient resolved for the given lookup key.
// Both lookup paths (by patient id, by owning user id) return it so callers
// handle absence the same way regardless of which key they hold.
var ErrNotFound = errors.New("patients: patient not found")

// Patient is the registered subject of care, owned by a directory user.
// It is created once during registration and read-only afterwards.
type Patient struct {
	ID     string `dynamodbav:"id" json:"id"`
	UserID string `dynamodbav:"userId" json:"userId"`

	Name      string `dynamodbav:"name" json:"name"`
	Email     string `dynamodbav:"email" json:"email"`
	Phone     string `dynamodbav:"phone" json:"phone"`
	BirthDate string `dynamodbav:"birthDate,omitempty" json:"birthDate,omitempty"`
	Gender    string `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	Address   string `dynamodbav:"address,omitempty" json:"address,omitempty"`

	Occupation             string `dynamodbav:"occupation,omitempty" json:"occupation,omitempty"`
	EmergencyContactName   string `dynamodbav:"emergencyContactName,omitempty" json:"emergencyContactName,omitempty"`
	EmergencyContactNumber string `dynamodbav:"emergencyContactNumber,omitempty" json:"emergencyContactNumber,omitempty"`
	PrimaryPhysician       string `dynamodbav:"primaryPhysician,omitempty" json:"primaryPhysician,omitempty"`
	InsuranceProvider      string `dynamodbav:"insuranceProvider,omitempty" json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber  string `dynamodbav:"insurancePolicyNumber,omitempty" json:"insurancePolicyNumber,omitempty"`
	Allergies              string `dynamodbav:"allergies,omitempty" json:"allergies,omitempty"`
	CurrentMedication      string `dynamodbav:"currentMedication,omitempty" json:"currentMedication,omitempty"`

	IdentificationType        string `dynamodbav:"identificationType,omitempty" json:"identificationType,omitempty"`
	IdentificationNumber      string `dynamodbav:"identificationNumber,omitempty" json:"identificationNumber,omitempty"`
	IdentificationDocumentID  string `dynamodbav:"identificationDocumentId,omitempty" json:"identificationDocumentId,omitempty"`
	IdentificationDocumentURL string `dynamodbav:"identificationDocumentUrl,omitempty" json:"identificationDocumentUrl,omitempty"`

	PrivacyConsent bool   `dynamodbav:"privacyConsent" json:"privacyConsent"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
}
