package incident

// Record is the field set extracted from one ticket page. Every value is
// optional; nil marshals to JSON null and means the field was not found.
type Record struct {
	IncidentNumber       *string          `json:"incident_number"`
	IncidentType         *string          `json:"incident_type"`
	Address              *string          `json:"address"`
	Calls                *string          `json:"calls"`
	StartTime            *string          `json:"start_time"`
	ERT                  *string          `json:"ert"`
	Duration             *string          `json:"duration"`
	DeviceName           *string          `json:"device_name"`
	DeviceType           *string          `json:"device_type"`
	Network              *string          `json:"network"`
	Feeder               *string          `json:"feeder"`
	LocalOffice          *string          `json:"local_office"`
	Substation           *string          `json:"substation"`
	AffectedCustomers    *string          `json:"affected_customers"`
	WorkOrderID          *string          `json:"work_order_id"`
	DamageAssessment     DamageAssessment `json:"damage_assessment"`
	DispatcherComments   *string          `json:"dispatcher_comments"`
	CrewComments         *string          `json:"crew_comments"`
	NeedScout            *string          `json:"need_scout"`
	FirstCustomerComment *string          `json:"first_customer_comment"`
	RawLines             []string         `json:"raw_lines"`
	ObjectID             int              `json:"object_id"`
	PageNumber           int              `json:"page_number"`
}

// DamageAssessment holds the two count triples of the damage table
type DamageAssessment struct {
	PolesDown        *string `json:"poles_down"`
	Services         *string `json:"services"`
	TransformersDown *string `json:"transformers_down"`
	CrossArms        *string `json:"cross_arms"`
	ConductorSpan    *string `json:"conductor_span"`
	TreeTrim         *string `json:"tree_trim"`
}

// fieldRefs maps template field names to record slots
var fieldRefs = map[string]func(*Record) **string{
	"incident_number":        func(r *Record) **string { return &r.IncidentNumber },
	"incident_type":          func(r *Record) **string { return &r.IncidentType },
	"address":                func(r *Record) **string { return &r.Address },
	"calls":                  func(r *Record) **string { return &r.Calls },
	"start_time":             func(r *Record) **string { return &r.StartTime },
	"ert":                    func(r *Record) **string { return &r.ERT },
	"duration":               func(r *Record) **string { return &r.Duration },
	"device_name":            func(r *Record) **string { return &r.DeviceName },
	"device_type":            func(r *Record) **string { return &r.DeviceType },
	"network":                func(r *Record) **string { return &r.Network },
	"feeder":                 func(r *Record) **string { return &r.Feeder },
	"local_office":           func(r *Record) **string { return &r.LocalOffice },
	"substation":             func(r *Record) **string { return &r.Substation },
	"affected_customers":     func(r *Record) **string { return &r.AffectedCustomers },
	"need_scout":             func(r *Record) **string { return &r.NeedScout },
	"first_customer_comment": func(r *Record) **string { return &r.FirstCustomerComment },
	"poles_down":             func(r *Record) **string { return &r.DamageAssessment.PolesDown },
	"services":               func(r *Record) **string { return &r.DamageAssessment.Services },
	"transformers_down":      func(r *Record) **string { return &r.DamageAssessment.TransformersDown },
	"cross_arms":             func(r *Record) **string { return &r.DamageAssessment.CrossArms },
	"conductor_span":         func(r *Record) **string { return &r.DamageAssessment.ConductorSpan },
	"tree_trim":              func(r *Record) **string { return &r.DamageAssessment.TreeTrim },
}

// Set stores value in the named field. It reports false for unknown names.
func (r *Record) Set(field string, value *string) bool {
	ref, ok := fieldRefs[field]
	if !ok {
		return false
	}
	*ref(r) = value
	return true
}

// Get returns the value of the named field, nil when unset or unknown
func (r *Record) Get(field string) *string {
	ref, ok := fieldRefs[field]
	if !ok {
		return nil
	}
	return *ref(r)
}

// IsField reports whether name is a settable record field
func IsField(name string) bool {
	_, ok := fieldRefs[name]
	return ok
}

func ptr(s string) *string {
	return &s
}

// nonEmpty returns nil for the empty string
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
