/*
Package portalsdk is a client for the estudio portal REST API: accounts
(clients, employees, profile), honorario invoicing, payments, and filed
documents.

# Clients and authentication

NewSDKClient builds a client rooted at the API base URL:

	sdk := portalsdk.NewSDKClient("https://portal.example.com", portalsdk.Options{
		Tokens: tokens, // supplies the persisted access/refresh tokens
	})

The token endpoints (Login, RefreshAccessToken) go through a bare HTTP
client. Every other operation is sent through an authenticated transport
that reads the current access token from the injected TokenProvider, sets
the Authorization header, and on a 401 refreshes once and retries the
request exactly once. Concurrent 401s coalesce into a single refresh call.
The transport reports unrecoverable 401s and successful refreshes through
the injected Notifier; it never owns session state itself.

# Listings

Collection endpoints return a Page envelope whose Next and Previous fields
are absolute URLs. Follow them directly:

	page, err := sdk.ListHonorarios(ctx, portalsdk.HonorarioFilter{Status: portalsdk.HonorarioPendiente})
	for page.HasNext() {
		page, err = portalsdk.NextPage(ctx, sdk, page)
		...
	}

# Uploads

Invoice PDFs, payment tickets, and documents are uploaded as multipart
form data. Attachments are validated client-side (application/pdf, at most
5 MiB) before any network call; the API re-validates authoritatively.
*/
package portalsdk
