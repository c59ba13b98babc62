package query

// Options carries the optional filter, sort and pagination parameters of a
// catalog listing. All fields bind from query string parameters; absent
// values leave the corresponding stage inactive.
type Options struct {
	MinimumPrice        *float64 `form:"minimumPrice" json:"minimum_price,omitempty"`
	MaximumPrice        *float64 `form:"maximumPrice" json:"maximum_price,omitempty"`
	OrderByPropertyName string   `form:"orderByPropertyName" json:"order_by_property_name,omitempty"`
	IsDescending        bool     `form:"isDescending" json:"is_descending"`
	PageNumber          *int     `form:"pageNumber" json:"page_number,omitempty"`
	PageSize            *int     `form:"pageSize" json:"page_size,omitempty"`
}
