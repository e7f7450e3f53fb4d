package portalsdk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// listPage fetches one page of a collection resource.
func listPage[T any](ctx context.Context, c *SDKClient, path string, query url.Values) (*Page[T], error) {
	var page Page[T]
	if err := c.getJSON(ctx, c.url(path), query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FollowPage fetches the absolute page URL taken from a pagination
// envelope's next or previous field. The URL is used as the server returned
// it rather than recomposed from page numbers.
func FollowPage[T any](ctx context.Context, c *SDKClient, pageURL string) (*Page[T], error) {
	if pageURL == "" {
		return nil, fmt.Errorf("portalsdk: empty page url")
	}

	var page Page[T]
	if err := c.getJSON(ctx, pageURL, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// NextPage follows page.Next, or returns nil when the server advertised no
// following page.
func NextPage[T any](ctx context.Context, c *SDKClient, page *Page[T]) (*Page[T], error) {
	if !page.HasNext() {
		return nil, nil
	}
	return FollowPage[T](ctx, c, *page.Next)
}

// apply adds the shared pagination parameters to a query.
func (o ListOptions) apply(query url.Values) {
	if o.Page > 0 {
		query.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(o.PageSize))
	}
}
