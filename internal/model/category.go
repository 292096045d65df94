package model

// Category is one member of the fixed expense taxonomy.
type Category string

// The full expense taxonomy. Definition order is significant: the
// categorizer resolves score ties to the earlier definition.
const (
	CategoryMedicalSupplies    Category = "Medical Supplies"
	CategoryOfficeRent         Category = "Office Rent"
	CategoryUtilities          Category = "Utilities"
	CategoryEquipment          Category = "Equipment"
	CategoryInsurance          Category = "Insurance"
	CategoryLicenses           Category = "Professional Licenses"
	CategoryProfessionalFees   Category = "Professional Fees"
	CategoryMarketing          Category = "Marketing & Advertising"
	CategoryTransportation     Category = "Transportation"
	CategoryMeals              Category = "Meals & Entertainment"
	CategoryOfficeSupplies     Category = "Office Supplies"
	CategoryTelecommunications Category = "Telecommunications"
	CategoryMaintenance        Category = "Maintenance & Repairs"
	CategoryTraining           Category = "Training & Education"
	CategoryBankCharges        Category = "Bank Charges"
	CategoryPayroll            Category = "Payroll"
	CategoryInventory          Category = "Inventory & Stock"
	CategoryLegalFees          Category = "Legal Fees"
	CategoryConsultancy        Category = "Consultancy"
	CategoryTravel             Category = "Travel & Accommodation"
	CategoryMiscellaneous      Category = "Miscellaneous"
)

// CategoryDefinition binds a category to its static keyword set.
type CategoryDefinition struct {
	Name     Category
	Keywords []string
}

// categoryDefinitions is the single keyword table shared by every
// consumer. Multi-word keywords are deliberate: the categorizer weights
// a keyword by its token count, so they carry more signal.
var categoryDefinitions = []CategoryDefinition{
	{CategoryMedicalSupplies, []string{"medical", "pharma", "syringe", "gloves", "surgical", "medicine", "clinic supplies", "first aid", "diagnostic", "thermometer"}},
	{CategoryOfficeRent, []string{"rent", "lease", "landlord", "office space", "tenancy contract", "ejari"}},
	{CategoryUtilities, []string{"dewa", "sewa", "electricity", "water bill", "addc", "cooling", "utility"}},
	{CategoryEquipment, []string{"equipment", "machine", "computer", "laptop", "printer", "scanner", "hardware", "x-ray", "ultrasound"}},
	{CategoryInsurance, []string{"insurance", "takaful", "policy premium", "coverage", "indemnity"}},
	{CategoryLicenses, []string{"license", "licence", "trade license", "permit", "registration fee", "dha license", "municipality"}},
	{CategoryProfessionalFees, []string{"professional fee", "audit", "accounting", "bookkeeping", "tax agent"}},
	{CategoryMarketing, []string{"marketing", "advertising", "promotion", "social media", "campaign", "branding", "seo"}},
	{CategoryTransportation, []string{"fuel", "petrol", "salik", "parking", "taxi", "careem", "uber", "vehicle"}},
	{CategoryMeals, []string{"restaurant", "catering", "meal", "coffee", "lunch", "dinner", "refreshment"}},
	{CategoryOfficeSupplies, []string{"stationery", "paper", "toner", "ink cartridge", "office supplies", "pens"}},
	{CategoryTelecommunications, []string{"etisalat", "du telecom", "internet", "phone bill", "mobile plan", "broadband", "telecom"}},
	{CategoryMaintenance, []string{"maintenance", "repair", "cleaning", "pest control", "ac service", "plumbing"}},
	{CategoryTraining, []string{"training", "course", "workshop", "seminar", "conference", "certification", "cme"}},
	{CategoryBankCharges, []string{"bank charge", "bank fee", "transfer fee", "card fee", "interest charged"}},
	{CategoryPayroll, []string{"salary", "payroll", "wages", "wps", "gratuity", "end of service"}},
	{CategoryInventory, []string{"inventory", "stock", "wholesale", "goods purchase", "consumables"}},
	{CategoryLegalFees, []string{"legal", "lawyer", "attorney", "notary", "court fee", "legal consultation"}},
	{CategoryConsultancy, []string{"consultancy", "consulting", "advisory", "consultant"}},
	{CategoryTravel, []string{"flight", "airline", "hotel", "travel", "visa fee", "accommodation", "airways"}},
	{CategoryMiscellaneous, []string{}},
}

// CategoryDefinitions returns the taxonomy in definition order.
func CategoryDefinitions() []CategoryDefinition {
	return categoryDefinitions
}

// Categories returns the taxonomy member names in definition order.
func Categories() []Category {
	names := make([]Category, len(categoryDefinitions))
	for i, def := range categoryDefinitions {
		names[i] = def.Name
	}
	return names
}

// ValidCategory reports whether name is a member of the taxonomy.
func ValidCategory(name Category) bool {
	for _, def := range categoryDefinitions {
		if def.Name == name {
			return true
		}
	}
	return false
}
