package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.ListAccounts(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	resp := accountListResponse{
		Accounts:     make([]accountResponse, 0, len(accounts)),
		TotalBalance: core.SumBalances(accounts).String(),
	}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.accountFromRequest(w, r)
	if !ok {
		return
	}

	saved, err := s.accounts.CreateAccount(r.Context(), userIDFrom(r.Context()), account)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(saved))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.accountFromRequest(w, r)
	if !ok {
		return
	}
	account.ID = r.PathValue("id")

	if err := s.accounts.UpdateAccount(r.Context(), userIDFrom(r.Context()), account); err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.DeleteAccount(r.Context(), userIDFrom(r.Context()), r.PathValue("id")); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) accountFromRequest(w http.ResponseWriter, r *http.Request) (core.Account, bool) {
	var req accountRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Account{}, false
	}

	cents, err := core.ParseBalanceToCents(req.Balance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid balance")
		return core.Account{}, false
	}

	account := core.Account{
		Name:          req.Name,
		Type:          core.AccountType(req.Type),
		Balance:       core.Money{Cents: cents},
		AccountNumber: req.AccountNumber,
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Account{}, false
	}
	return account, true
}
