package models

// DoctorInfo is a public directory entry for a clinic doctor.
type DoctorInfo struct {
	Name      string `bson:"name" json:"name"`
	Specialty string `bson:"specialty" json:"specialty"`
}

// FAQ is a canned question/answer pair served by the FAQ handler.
type FAQ struct {
	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`
}

// ClinicInfo is the clinic catalog: hours, location, services, doctors, FAQs.
type ClinicInfo struct {
	Name     string            `bson:"name" json:"name"`
	Address  string            `bson:"address" json:"address"`
	Phone    string            `bson:"phone" json:"phone"`
	Email    string            `bson:"email" json:"email"`
	Hours    map[string]string `bson:"hours" json:"hours"`
	Services []string          `bson:"services" json:"services"`
	Doctors  []DoctorInfo      `bson:"doctors" json:"doctors"`
	FAQs     []FAQ             `bson:"faqs" json:"faqs"`
}
