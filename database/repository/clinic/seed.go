package clinicRepo

import "clinicvoice/models"

// DefaultClinicInfo is the catalog served when the database has no clinic
// document yet (fresh deployments, demo mode, tests).
func DefaultClinicInfo() *models.ClinicInfo {
	return &models.ClinicInfo{
		Name:    "Confido Health Clinic",
		Address: "123 Healthcare Ave, Medical District, CA 90210",
		Phone:   "(555) 123-4567",
		Email:   "info@confidohealth.com",
		Hours: map[string]string{
			"Monday":    "8:00 AM - 6:00 PM",
			"Tuesday":   "8:00 AM - 6:00 PM",
			"Wednesday": "8:00 AM - 6:00 PM",
			"Thursday":  "8:00 AM - 6:00 PM",
			"Friday":    "8:00 AM - 5:00 PM",
			"Saturday":  "9:00 AM - 2:00 PM",
			"Sunday":    "Closed",
		},
		Services: []string{
			"Primary Care",
			"Preventive Medicine",
			"Pediatrics",
			"Women's Health",
			"Geriatrics",
			"Laboratory Services",
			"Vaccinations",
			"Minor Procedures",
		},
		Doctors: []models.DoctorInfo{
			{Name: "Dr. Emily Smith", Specialty: "Family Medicine"},
			{Name: "Dr. Michael Johnson", Specialty: "Internal Medicine"},
			{Name: "Dr. Sarah Williams", Specialty: "Pediatrics"},
			{Name: "Dr. David Brown", Specialty: "Geriatrics"},
		},
		FAQs: []models.FAQ{
			{Question: "Do you accept new patients?", Answer: "Yes, we are currently accepting new patients. Please call our office to schedule an initial consultation."},
			{Question: "What insurance plans do you accept?", Answer: "We accept most major insurance plans including Blue Cross, Aetna, Cigna, and UnitedHealthcare."},
			{Question: "How do I refill my prescription?", Answer: "You can request prescription refills through our patient portal or by calling our office directly."},
			{Question: "How do I schedule a telehealth appointment?", Answer: "Telehealth appointments can be scheduled through our website or by calling our office."},
		},
	}
}

// DefaultPolicies lists the insurance relationships seeded for fresh
// deployments. Coverage percent is the negotiated in-network rate.
func DefaultPolicies() []models.InsurancePolicy {
	return []models.InsurancePolicy{
		{Provider: "Blue Cross", Accepted: true, CoveragePercent: 90, CoverageNotes: "Standard coverage for most procedures."},
		{Provider: "Aetna", Accepted: true, CoveragePercent: 85, CoverageNotes: "Standard coverage for most procedures."},
		{Provider: "Cigna", Accepted: true, CoveragePercent: 80, CoverageNotes: "Prior authorization required for imaging."},
		{Provider: "UnitedHealthcare", Accepted: true, CoveragePercent: 85, CoverageNotes: "Standard coverage for most procedures."},
		{Provider: "Medicare", Accepted: true, CoveragePercent: 80, CoverageNotes: "Part B services only."},
	}
}
