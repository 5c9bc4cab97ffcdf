package registry

// Address is a registered office address.
type Address struct {
	Premises     string `json:"premises,omitempty"`
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

// PreviousName is a former registered name.
type PreviousName struct {
	Name          string `json:"name"`
	EffectiveFrom string `json:"effective_from,omitempty"`
	CeasedOn      string `json:"ceased_on,omitempty"`
}

// Company is a registry candidate, built from either a full profile or a
// search result item. Search items carry fewer fields; Source records which.
type Company struct {
	Number        string         `json:"company_number"`
	Name          string         `json:"company_name"`
	Status        string         `json:"company_status,omitempty"`
	CreatedOn     string         `json:"date_of_creation,omitempty"`
	CeasedOn      string         `json:"date_of_cessation,omitempty"`
	Type          string         `json:"type,omitempty"`
	Address       Address        `json:"registered_office_address"`
	PreviousNames []PreviousName `json:"previous_company_names,omitempty"`
	SICCodes      []string       `json:"sic_codes,omitempty"`
	Source        string         `json:"source,omitempty"`
}

const (
	SourceProfile = "profile"
	SourceSearch  = "search"
)

// SearchResult is one page of name search results.
type SearchResult struct {
	Items        []Company `json:"items"`
	TotalResults int       `json:"total_results"`
}

// profilePayload is the GET /company/{number} body.
type profilePayload struct {
	CompanyNumber        string         `json:"company_number"`
	CompanyName          string         `json:"company_name"`
	CompanyStatus        string         `json:"company_status"`
	DateOfCreation       string         `json:"date_of_creation"`
	DateOfCessation      string         `json:"date_of_cessation"`
	DateOfDissolution    string         `json:"date_of_dissolution"`
	Type                 string         `json:"type"`
	CompanyType          string         `json:"company_type"`
	RegisteredOffice     Address        `json:"registered_office_address"`
	PreviousCompanyNames []PreviousName `json:"previous_company_names"`
	SICCodes             []string       `json:"sic_codes"`
}

func (p profilePayload) company() Company {
	ceased := p.DateOfCessation
	if ceased == "" {
		ceased = p.DateOfDissolution
	}
	kind := p.Type
	if kind == "" {
		kind = p.CompanyType
	}
	return Company{
		Number:        p.CompanyNumber,
		Name:          p.CompanyName,
		Status:        p.CompanyStatus,
		CreatedOn:     p.DateOfCreation,
		CeasedOn:      ceased,
		Type:          kind,
		Address:       p.RegisteredOffice,
		PreviousNames: p.PreviousCompanyNames,
		SICCodes:      p.SICCodes,
		Source:        SourceProfile,
	}
}

// searchPayload is the GET /search/companies body.
type searchPayload struct {
	Items []struct {
		Title           string  `json:"title"`
		CompanyNumber   string  `json:"company_number"`
		CompanyStatus   string  `json:"company_status"`
		CompanyType     string  `json:"company_type"`
		DateOfCreation  string  `json:"date_of_creation"`
		DateOfCessation string  `json:"date_of_cessation"`
		Address         Address `json:"address"`
	} `json:"items"`
	TotalResults int `json:"total_results"`
}

func (p searchPayload) result() *SearchResult {
	out := &SearchResult{TotalResults: p.TotalResults, Items: make([]Company, 0, len(p.Items))}
	for _, item := range p.Items {
		out.Items = append(out.Items, Company{
			Number:    item.CompanyNumber,
			Name:      item.Title,
			Status:    item.CompanyStatus,
			CreatedOn: item.DateOfCreation,
			CeasedOn:  item.DateOfCessation,
			Type:      item.CompanyType,
			Address:   item.Address,
			Source:    SourceSearch,
		})
	}
	return out
}
