package doctor

import "github.com/medibook/medibook-api/internal/model"

// demoCatalog holds the demonstration doctors reachable through numeric
// identifiers ("1".."6"). They exist only in memory; doctor "N" maps to
// index N-1.
var demoCatalog = []*model.Doctor{
	{
		ID:             "1",
		Name:           "Dr. Sarah Khan",
		Specialization: "Cardiologist",
		ImageURL:       "/placeholder.svg",
		Experience:     8,
		Rating:         4.8,
		Education:      "MBBS, MD - Cardiology",
		About:          "Dr. Sarah Khan is a renowned cardiologist with expertise in preventive cardiology and heart disease management.",
	},
	{
		ID:             "2",
		Name:           "Dr. Rahul Patel",
		Specialization: "Gastrologist",
		ImageURL:       "/placeholder.svg",
		Experience:     10,
		Rating:         4.9,
		Education:      "MBBS, MD - Gastroenterology",
		About:          "Dr. Rahul Patel specializes in digestive disorders and has performed numerous complex gastroenterological procedures.",
	},
	{
		ID:             "3",
		Name:           "Dr. Aisha Rahman",
		Specialization: "Neurologist",
		ImageURL:       "/placeholder.svg",
		Experience:     12,
		Rating:         4.7,
		Education:      "MBBS, MD - Neurology",
		About:          "Dr. Aisha Rahman is an expert in neurological disorders with special focus on stroke treatment and prevention.",
	},
	{
		ID:             "4",
		Name:           "Dr. Mahfuz Ahmed",
		Specialization: "Orthopedic",
		ImageURL:       "/placeholder.svg",
		Experience:     15,
		Rating:         4.9,
		Education:      "MBBS, MS - Orthopedics",
		About:          "Dr. Mahfuz Ahmed specializes in joint replacements and sports injuries with minimal invasive techniques.",
	},
	{
		ID:             "5",
		Name:           "Dr. Fatima Begum",
		Specialization: "Pediatrician",
		ImageURL:       "/placeholder.svg",
		Experience:     7,
		Rating:         4.8,
		Education:      "MBBS, MD - Pediatrics",
		About:          "Dr. Fatima Begum is a compassionate pediatrician dedicated to comprehensive child healthcare from infancy through adolescence.",
	},
	{
		ID:             "6",
		Name:           "Dr. Mohammad Hossain",
		Specialization: "General Medicine",
		ImageURL:       "/placeholder.svg",
		Experience:     9,
		Rating:         4.6,
		Education:      "MBBS, MD - Internal Medicine",
		About:          "Dr. Mohammad Hossain provides primary care services with special interest in managing chronic diseases and preventive healthcare.",
	},
}
