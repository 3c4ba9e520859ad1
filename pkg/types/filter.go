package types

// Filter - параметры списка: поиск, сортировка, фильтры и пагинация.
//
//	/api/requests?search=pump&sort[scheduled_date]=asc&filter[stage]=new,in_progress&limit=20&page=1&withPagination=true
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// Get возвращает строковое значение фильтра или "".
func (f Filter) Get(key string) string {
	if f.Filter == nil {
		return ""
	}
	if v, ok := f.Filter[key].(string); ok {
		return v
	}
	return ""
}
