package resume

import "time"

// YearMin is the earliest year accepted for any resume date field.
const YearMin = 1950

// YearMax returns the latest accepted year, the current calendar year.
func YearMax() int {
	return time.Now().Year()
}

// SectionsPerProject is the size of the default section set every project
// starts with; the dashboard completion hint divides by it.
const SectionsPerProject = 11

// Section keys in their fixed default order.
const (
	SectionBasics         = "basics"
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionAwards         = "awards"
	SectionLanguages      = "languages"
	SectionHighlights     = "highlights"
	SectionDeclaration    = "declaration"
)

// DefaultSection describes one entry of the starter section set.
type DefaultSection struct {
	Key   string
	Order int
}

// DefaultSections returns the starter set inserted with every new project.
func DefaultSections() []DefaultSection {
	return []DefaultSection{
		{Key: SectionBasics, Order: 1},
		{Key: SectionSummary, Order: 2},
		{Key: SectionExperience, Order: 3},
		{Key: SectionEducation, Order: 4},
		{Key: SectionSkills, Order: 5},
		{Key: SectionProjects, Order: 6},
		{Key: SectionCertifications, Order: 7},
		{Key: SectionAwards, Order: 8},
		{Key: SectionLanguages, Order: 9},
		{Key: SectionHighlights, Order: 10},
		{Key: SectionDeclaration, Order: 11},
	}
}

// Singleton sections conventionally hold one item.
func IsSingletonSection(key string) bool {
	switch key {
	case SectionBasics, SectionSummary, SectionDeclaration:
		return true
	}
	return false
}

// Field length caps, mirrored from the editor so server and client agree.
const (
	MaxProjectTitle     = 60
	MaxFullName         = 80
	MaxHeadline         = 120
	MaxLocationLabel    = 80
	MaxCity             = 80
	MaxCountry          = 80
	MaxEmail            = 120
	MaxPhone            = 40
	MaxWebsite          = 200
	MaxLinkLabel        = 60
	MaxLinkURL          = 2048
	MaxSummary          = 300
	MaxDeclaration      = 180
	MaxDeclarationPlace = 80
	MaxDeclarationName  = 80
	MaxRole             = 100
	MaxCompany          = 120
	MaxDegree           = 140
	MaxSchool           = 140
	MaxLocation         = 120
	MaxGrade            = 40
	MaxExperienceNote   = 240
	MaxProjectNote      = 200
	MaxAwardNote        = 200
	MaxBulletLine       = 160
	MaxTagLine          = 160
	MaxSkill            = 40
	MaxSkillLevel       = 30
	MaxProjectName      = 120
	MaxCertification    = 120
	MaxIssuer           = 120
	MaxAwardTitle       = 120
	MaxAwardBy          = 120
	MaxLanguage         = 60
	MaxProficiency      = 30
	MaxHighlight        = 220
	MaxBookmarkLabel    = 120
)
