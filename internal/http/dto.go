package http

import (
	"fintrack/internal/core"
)

// Request payloads. Amounts travel as decimal strings so clients never deal
// in cents or floats.
type (
	registerRequest struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Name     string `json:"name" validate:"required,max=100"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}

	loginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	accountRequest struct {
		Name          string `json:"name" validate:"required,max=100"`
		Type          string `json:"type" validate:"required,oneof=bank credit cash savings other"`
		Balance       string `json:"balance" validate:"required"`
		AccountNumber string `json:"accountNumber" validate:"max=50"`
	}

	categoryRequest struct {
		Name  string `json:"name" validate:"required,max=100"`
		Type  string `json:"type" validate:"required,oneof=expense income"`
		Icon  string `json:"icon" validate:"required"`
		Color string `json:"color" validate:"required"`
	}

	transactionRequest struct {
		Title           string `json:"title" validate:"required,max=200"`
		Amount          string `json:"amount" validate:"required"`
		Type            string `json:"type" validate:"required,oneof=expense income"`
		TransactionDate string `json:"transactionDate" validate:"required"`
		CategoryID      string `json:"categoryId" validate:"omitempty,uuid"`
	}
)

// Response payloads.
type (
	userResponse struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	authResponse struct {
		Token string       `json:"token"`
		User  userResponse `json:"user"`
	}

	accountResponse struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Type          string `json:"type"`
		Balance       string `json:"balance"`
		AccountNumber string `json:"accountNumber,omitempty"`
	}

	accountListResponse struct {
		Accounts     []accountResponse `json:"accounts"`
		TotalBalance string            `json:"totalBalance"`
	}

	categoryResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Type      string `json:"type"`
		Icon      string `json:"icon"`
		Color     string `json:"color"`
		IsDefault bool   `json:"isDefault"`
	}

	transactionResponse struct {
		ID              string            `json:"id"`
		Title           string            `json:"title"`
		Amount          string            `json:"amount"`
		Type            string            `json:"type"`
		TransactionDate string            `json:"transactionDate"`
		Category        *categoryResponse `json:"category"`
	}

	summaryResponse struct {
		TotalExpenses string `json:"totalExpenses"`
		TotalIncome   string `json:"totalIncome"`
		NetSavings    string `json:"netSavings"`
		Count         int    `json:"count"`
	}

	transactionListResponse struct {
		Transactions []transactionResponse `json:"transactions"`
		Summary      summaryResponse       `json:"summary"`
	}
)

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Name:          a.Name,
		Type:          string(a.Type),
		Balance:       a.Balance.String(),
		AccountNumber: a.AccountNumber,
	}
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Icon:      c.Icon,
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:              t.ID,
		Title:           t.Title,
		Amount:          t.Amount.String(),
		Type:            string(t.Type),
		TransactionDate: t.TransactionDate.Format("2006-01-02"),
	}
	if t.Category != nil {
		c := toCategoryResponse(*t.Category)
		resp.Category = &c
	}
	return resp
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		TotalExpenses: s.TotalExpenses.String(),
		TotalIncome:   s.TotalIncome.String(),
		NetSavings:    s.NetSavings.String(),
		Count:         s.Count,
	}
}

func toTransactionListResponse(txs []core.Transaction, summary core.Summary) transactionListResponse {
	out := transactionListResponse{
		Transactions: make([]transactionResponse, 0, len(txs)),
		Summary:      toSummaryResponse(summary),
	}
	for _, t := range txs {
		out.Transactions = append(out.Transactions, toTransactionResponse(t))
	}
	return out
}
