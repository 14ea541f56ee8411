package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"vendbridge/internal/service"
)

var ordersTmpl = template.Must(template.New("orders").Parse(`<!DOCTYPE html>
<html>
<head><title>Orders</title></head>
<body>
<h1>Orders</h1>
<table border="1" cellpadding="4">
<tr><th>Order ID</th><th>Amount (INR)</th><th>Status</th><th>Payment ID</th><th>Created</th></tr>
{{range .}}
<tr>
<td>{{.OrderID}}</td>
<td>{{.Amount}}</td>
<td>{{.Status}}</td>
<td>{{.PaymentID}}</td>
<td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// OrdersPageHandler renders the operator's order listing, newest first.
func OrdersPageHandler(store service.OrderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := store.ListOrders(r.Context())
		if err != nil {
			slog.Error("order listing failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ordersTmpl.Execute(w, orders); err != nil {
			slog.Error("orders template failed", "error", err)
		}
	}
}
