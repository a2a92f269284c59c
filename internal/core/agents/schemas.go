package agents

import (
	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/core/ports"
)

// NewBillAgent builds the extractor for medical bills, invoices and
// payment statements.
func NewBillAgent(oracle ports.Oracle) *Agent {
	schema := domain.FieldSchema{
		Name: "bill_extraction",
		Fields: []domain.FieldSpec{
			{Name: "hospital_name", Type: domain.FieldText},
			{Name: "total_amount", Type: domain.FieldAmount},
			{Name: "date_of_service", Type: domain.FieldDate},
			{Name: "patient_name", Type: domain.FieldText},
			{Name: "patient_id", Type: domain.FieldText},
			{Name: "services", Type: domain.FieldList},
			{Name: "insurance_details", Type: domain.FieldText},
			{Name: "billing_address", Type: domain.FieldText},
			{Name: "account_number", Type: domain.FieldText},
			{Name: "diagnosis_codes", Type: domain.FieldCodes},
			{Name: "procedure_codes", Type: domain.FieldCodes},
		},
	}

	system := `You are a medical billing specialist AI. Extract structured information from medical bills, invoices, and payment statements.

Focus on extracting:
1. Hospital/provider information
2. Patient details
3. Service dates and descriptions
4. Amounts and charges
5. Insurance information
6. Medical codes (ICD, CPT)
7. Account/billing details

Be precise with numerical values and dates. If information is not clearly stated, use null.
For lists (services, codes), include all relevant items found.

Respond only with valid JSON matching the specified schema.`

	return newAgent("BillAgent", domain.TypeBill, oracle, schema, system, "medical bill")
}

// NewDischargeAgent builds the extractor for hospital discharge summaries
// and medical reports.
func NewDischargeAgent(oracle ports.Oracle) *Agent {
	schema := domain.FieldSchema{
		Name: "discharge_extraction",
		Fields: []domain.FieldSpec{
			{Name: "patient_name", Type: domain.FieldText},
			{Name: "patient_id", Type: domain.FieldText},
			{Name: "admission_date", Type: domain.FieldDate},
			{Name: "discharge_date", Type: domain.FieldDate},
			{Name: "attending_physician", Type: domain.FieldText},
			{Name: "diagnosis", Type: domain.FieldText},
			{Name: "secondary_diagnoses", Type: domain.FieldList},
			{Name: "treatment_summary", Type: domain.FieldText},
			{Name: "medications", Type: domain.FieldList},
			{Name: "procedures", Type: domain.FieldList},
			{Name: "discharge_instructions", Type: domain.FieldText},
			{Name: "follow_up_appointments", Type: domain.FieldList},
			{Name: "hospital_name", Type: domain.FieldText},
		},
	}

	system := `You are a medical records specialist AI. Extract structured information from hospital discharge summaries and medical reports.

Focus on extracting:
1. Patient identification information
2. Admission and discharge dates
3. Medical staff (attending physician, etc.)
4. Primary and secondary diagnoses
5. Treatment summary and procedures
6. Medications prescribed
7. Discharge instructions and follow-up care
8. Hospital/facility information

Be precise with medical terminology and dates. If information is not clearly stated, use null.
For lists (medications, procedures), include all relevant items found.

Respond only with valid JSON matching the specified schema.`

	return newAgent("DischargeAgent", domain.TypeDischargeSummary, oracle, schema, system, "discharge summary")
}

// NewIDCardAgent builds the extractor for patient ID cards and insurance
// cards. One agent serves both document types.
func NewIDCardAgent(oracle ports.Oracle) *Agent {
	schema := domain.FieldSchema{
		Name: "id_card_extraction",
		Fields: []domain.FieldSpec{
			{Name: "patient_name", Type: domain.FieldText},
			{Name: "patient_id", Type: domain.FieldText},
			{Name: "date_of_birth", Type: domain.FieldDate},
			{Name: "address", Type: domain.FieldText},
			{Name: "phone_number", Type: domain.FieldPhone},
			{Name: "emergency_contact", Type: domain.FieldText},
			{Name: "insurance_provider", Type: domain.FieldText},
			{Name: "policy_number", Type: domain.FieldText},
			{Name: "group_number", Type: domain.FieldText},
			{Name: "member_id", Type: domain.FieldText},
			{Name: "effective_date", Type: domain.FieldDate},
			{Name: "expiration_date", Type: domain.FieldDate},
		},
	}

	system := `You are an identification document specialist AI. Extract structured information from patient ID cards, insurance cards, and identification documents.

Focus on extracting:
1. Personal identification information
2. Contact details
3. Insurance information (if present)
4. Policy numbers and member IDs
5. Effective and expiration dates
6. Emergency contact information

Be precise with identification numbers and dates. If information is not clearly stated, use null.
Handle both medical ID cards and insurance cards.

Respond only with valid JSON matching the specified schema.`

	return newAgent("IdCardAgent", domain.TypeIDCard, oracle, schema, system, "ID card")
}
