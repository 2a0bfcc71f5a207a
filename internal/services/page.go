package services

// Page bounds a list query. Zero values select the first page of 50.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

func (p Page) offset() int { return (p.Page - 1) * p.Limit }
