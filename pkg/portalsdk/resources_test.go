package portalsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestListClientsFollowsNextPage(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/clients/", r.URL.Path)

		switch r.URL.Query().Get("page") {
		case "", "1":
			next := srv.URL + "/api/clients/?page=2"
			_ = json.NewEncoder(w).Encode(Page[ClientAccount]{
				Count: 3,
				Next:  &next,
				Results: []ClientAccount{
					{ID: 1, RazonSocial: "Acme SA"},
					{ID: 2, RazonSocial: "Molinos SRL"},
				},
			})
		case "2":
			_ = json.NewEncoder(w).Encode(Page[ClientAccount]{
				Count:   3,
				Results: []ClientAccount{{ID: 3, RazonSocial: "Estancia SA"}},
			})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})
	ctx := context.Background()

	page, err := sdk.ListClients(ctx, ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	require.True(t, page.HasNext())

	// The next URL is followed as given, not recomposed.
	page, err = NextPage(ctx, sdk, page)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, "Estancia SA", page.Results[0].RazonSocial)
	require.False(t, page.HasNext())

	// Past the last page there is nothing to fetch.
	page, err = NextPage(ctx, sdk, page)
	require.NoError(t, err)
	require.Nil(t, page)
}

func TestClientCRUDPaths(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/clients/":
			var in ClientInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			require.Equal(t, "Acme SA", in.RazonSocial)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(ClientAccount{ID: 9, RazonSocial: in.RazonSocial, CUIT: in.CUIT})
		case "GET /api/clients/9/":
			_ = json.NewEncoder(w).Encode(ClientAccount{ID: 9, RazonSocial: "Acme SA"})
		case "PATCH /api/clients/9/":
			var fields map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
			require.Equal(t, "acme@example.com", fields["email"])
			_ = json.NewEncoder(w).Encode(ClientAccount{ID: 9, Email: "acme@example.com"})
		case "DELETE /api/clients/9/":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})
	ctx := context.Background()

	created, err := sdk.CreateClient(ctx, ClientInput{RazonSocial: "Acme SA", CUIT: "20-12345678-9"})
	require.NoError(t, err)
	require.Equal(t, int64(9), created.ID)

	got, err := sdk.GetClient(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, "Acme SA", got.RazonSocial)

	patched, err := sdk.PatchClient(ctx, 9, map[string]any{"email": "acme@example.com"})
	require.NoError(t, err)
	require.Equal(t, "acme@example.com", patched.Email)

	require.NoError(t, sdk.DeleteClient(ctx, 9))
}

func TestDeactivateEmployeeIsAPatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Soft delete: employees are deactivated, never removed.
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/employees/4/", r.URL.Path)

		var fields map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		require.Equal(t, false, fields["is_active"])

		_ = json.NewEncoder(w).Encode(Employee{ID: 4, IsActive: false})
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})

	emp, err := sdk.DeactivateEmployee(context.Background(), 4)
	require.NoError(t, err)
	require.False(t, emp.IsActive)
}

func TestHonorarioFilterQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "pendiente", q.Get("status"))
		require.Equal(t, "7", q.Get("user"))
		require.Equal(t, "Acme SA", q.Get("user__razon_social"))
		require.Equal(t, "2", q.Get("page"))
		_ = json.NewEncoder(w).Encode(Page[Honorario]{})
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})

	_, err := sdk.ListHonorarios(context.Background(), HonorarioFilter{
		Status:      HonorarioPendiente,
		UserID:      7,
		RazonSocial: "Acme SA",
		ListOptions: ListOptions{Page: 2},
	})
	require.NoError(t, err)
}

func TestCreateHonorarioUploadsMultipart(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/honorario/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(MaxAttachmentSize))
		require.Equal(t, "7", r.FormValue("user"))
		require.Equal(t, "Liquidación junio", r.FormValue("title"))
		require.Equal(t, "15000.5", r.FormValue("amount"))

		file, header, err := r.FormFile("honorario")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "liq.pdf", header.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Honorario{ID: 12, UserID: 7, Status: HonorarioPendiente})
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})

	h, err := sdk.CreateHonorario(context.Background(), CreateHonorarioInput{
		UserID: 7,
		Title:  "Liquidación junio",
		Amount: decimal.RequireFromString("15000.5"),
		File:   &Attachment{Filename: "liq.pdf", Content: pdfBytes},
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), h.ID)
}

func TestCreatePaymentValidatesBeforeNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Payment{ID: 1})
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})
	ctx := context.Background()

	// Transferencia without its comprobante never reaches the wire.
	_, err := sdk.CreatePayment(ctx, CreatePaymentInput{
		HonorarioID: 12,
		UserID:      7,
		Method:      MethodTransferencia,
		Amount:      decimal.RequireFromString("100"),
	})
	require.ErrorIs(t, err, ErrTicketRequired)

	_, err = sdk.CreatePayment(ctx, CreatePaymentInput{
		HonorarioID: 12,
		UserID:      7,
		Method:      MethodEfectivo,
		Amount:      decimal.Zero,
	})
	require.ErrorIs(t, err, ErrInvalidAmount)

	require.Zero(t, calls.Load())

	// Efectivo needs no ticket.
	_, err = sdk.CreatePayment(ctx, CreatePaymentInput{
		HonorarioID: 12,
		UserID:      7,
		Method:      MethodEfectivo,
		Amount:      decimal.RequireFromString("100"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), calls.Load())
}

func TestFollowPageRejectsEmptyURL(t *testing.T) {
	t.Parallel()

	sdk := NewSDKClient("http://localhost", Options{})
	_, err := FollowPage[ClientAccount](context.Background(), sdk, "")
	require.Error(t, err)
}

func TestProfileHasNoIDInPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/profile/", r.URL.Path)

		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(Profile{ID: 7, Username: "ana"})
		case http.MethodPatch:
			var fields map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
			_ = json.NewEncoder(w).Encode(Profile{ID: 7, Username: "ana", Email: fmt.Sprint(fields["email"])})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})
	ctx := context.Background()

	p, err := sdk.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "ana", p.Username)

	p, err = sdk.PatchProfile(ctx, map[string]any{"email": "ana@example.com"})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", p.Email)
}
