package fetch

// pageInfo is the cursor block of a GraphQL connection.
type pageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// pager walks a cursor-paginated connection: the first request carries no
// cursor, each answer either advances the cursor or finishes the walk.
type pager struct {
	cursor  string
	hasMore bool
	done    bool
}

func newPager() *pager {
	return &pager{hasMore: true}
}

// more reports whether another page should be requested.
func (p *pager) more() bool {
	return p.hasMore && !p.done
}

// advance consumes the page info of an answer.
func (p *pager) advance(info pageInfo) {
	p.hasMore = info.HasNextPage
	p.cursor = info.EndCursor
	if !p.hasMore || p.cursor == "" {
		p.done = true
	}
}

// stop ends the walk early, e.g. when the collection does not exist.
func (p *pager) stop() {
	p.done = true
}

// after renders the cursor argument of the next query.
func (p *pager) after() *string {
	if p.cursor == "" {
		return nil
	}
	c := p.cursor
	return &c
}
