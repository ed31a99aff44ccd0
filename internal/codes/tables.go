// internal/codes/tables.go
package codes

// Category names a bureau code table.
type Category string

const (
	AccountType    Category = "account-type"
	AccountStatus  Category = "account-status"
	Gender         Category = "gender"
	Employment     Category = "employment-status"
	State          Category = "state"
	PaymentHistory Category = "payment-history"
	AddressKind    Category = "address-indicator"
	EnquiryReason  Category = "enquiry-reason"
	FinancePurpose Category = "finance-purpose"
	TermsFrequency Category = "terms-frequency"
	Identification Category = "identification-type"
)

// accountTypeTable follows the bureau's numeric tradeline-type codes.
var accountTypeTable = map[string]string{
	"1":   "Auto Loan",
	"2":   "Housing Loan",
	"3":   "Property Loan",
	"4":   "Loan Against Shares/Securities",
	"5":   "Personal Loan",
	"6":   "Consumer Loan",
	"7":   "Gold Loan",
	"8":   "Education Loan",
	"9":   "Loan to Professional",
	"10":  "Credit Card",
	"13":  "Two-Wheeler Loan",
	"15":  "Secured Credit Card",
	"17":  "Commercial Vehicle Loan",
	"31":  "Loan Against Bank Deposits",
	"32":  "Used Car Loan",
	"33":  "Construction Equipment Loan",
	"34":  "Tractor Loan",
	"51":  "Business Loan - General",
	"59":  "P2P Auto Loan",
	"60":  "Three-Wheeler Loan",
	"61":  "GECL Secured",
	"123": "Microfinance Others",
}

// VehicleLoanFamily are the account-type codes treated as vehicle financing
// by the tradeline classifier.
var VehicleLoanFamily = map[string]bool{
	"1":  true, // auto loan
	"13": true, // two-wheeler
	"17": true, // commercial vehicle
	"32": true, // used car
	"59": true, // P2P auto
	"60": true, // three-wheeler
}

var accountStatusTable = map[string]string{
	"11": "Active",
	"13": "Paid or Closed Account / Zero Balance",
	"53": "Suit Filed",
	"71": "Account Settled",
	"78": "Account Restructured",
	"82": "Wilful Default",
	"83": "Written Off",
	"89": "Paid, Written Off Previously",
	"93": "Transferred to another Member",
}

var genderTable = map[string]string{
	"1": "Female",
	"2": "Male",
	"3": "Transgender",
}

var employmentTable = map[string]string{
	"1": "Salaried",
	"2": "Self Employed Professional",
	"3": "Self Employed",
	"4": "Others",
}

var stateTable = map[string]string{
	"01": "Jammu & Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"19": "West Bengal",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"27": "Maharashtra",
	"28": "Andhra Pradesh",
	"29": "Karnataka",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"36": "Telangana",
}

// paymentHistoryTable buckets days-past-due codes.
var paymentHistoryTable = map[string]string{
	"0":   "Standard (0 days past due)",
	"S":   "Standard",
	"1":   "1-30 days past due",
	"2":   "31-60 days past due",
	"3":   "61-90 days past due",
	"4":   "91-120 days past due",
	"5":   "120+ days past due",
	"B":   "Doubtful",
	"D":   "Doubtful",
	"L":   "Loss",
	"M":   "Special Mention",
	"?":   "Not Reported",
	"XXX": "Not Reported",
}

var addressKindTable = map[string]string{
	"1": "Permanent Address",
	"2": "Residence Address",
	"3": "Office Address",
	"4": "Not Categorized",
	"5": "Mortgage Property Address",
}

var enquiryReasonTable = map[string]string{
	"1":  "Auto Loan",
	"2":  "Housing Loan",
	"5":  "Personal Loan",
	"6":  "Consumer Loan",
	"10": "Credit Card",
	"13": "Two-Wheeler Loan",
	"32": "Used Car Loan",
	"51": "Business Loan",
	"99": "Other",
}

var financePurposeTable = map[string]string{
	"1": "New Vehicle Purchase",
	"2": "Used Vehicle Purchase",
	"3": "Refinance",
	"4": "Balance Transfer",
	"5": "Top-Up",
}

var termsFrequencyTable = map[string]string{
	"D": "Deferred",
	"P": "Single Payment",
	"M": "Monthly",
	"Q": "Quarterly",
	"2": "Fortnightly",
	"W": "Weekly",
}

var identificationTable = map[string]string{
	"01": "Income Tax ID (PAN)",
	"02": "Passport",
	"03": "Voter ID",
	"04": "Driving License",
	"06": "Aadhaar (UID)",
	"07": "Ration Card",
}

var tables = map[Category]map[string]string{
	AccountType:    accountTypeTable,
	AccountStatus:  accountStatusTable,
	Gender:         genderTable,
	Employment:     employmentTable,
	State:          stateTable,
	PaymentHistory: paymentHistoryTable,
	AddressKind:    addressKindTable,
	EnquiryReason:  enquiryReasonTable,
	FinancePurpose: financePurposeTable,
	TermsFrequency: termsFrequencyTable,
	Identification: identificationTable,
}
