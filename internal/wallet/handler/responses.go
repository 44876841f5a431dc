package handler

import (
	"time"

	"landregistry/internal/wallet/models"
)

type AccountResponse struct {
	Address      string `json:"address"`
	ShortAddress string `json:"short_address"`
	Balance      int64  `json:"balance"`
	ChainID      int64  `json:"chain_id"`
}

func toAccountResponse(st *models.State) AccountResponse {
	return AccountResponse{
		Address:      st.Address.String(),
		ShortAddress: st.Address.Short(),
		Balance:      st.Balance,
		ChainID:      st.ChainID,
	}
}

type SessionResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Address      string    `json:"address"`
	ShortAddress string    `json:"short_address"`
	Device       string    `json:"device"`
}

func toSessionResponse(s *models.Session) SessionResponse {
	return SessionResponse{
		AccessToken:  s.Token,
		TokenType:    "Bearer",
		ExpiresAt:    s.ExpiresAt,
		Address:      s.Address.String(),
		ShortAddress: s.Address.Short(),
		Device:       s.Device,
	}
}

type TransferResponse struct {
	ID        int64     `json:"id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Amount    int64     `json:"amount"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

func toTransferList(ts []*models.Transfer) TransferListResponse {
	out := TransferListResponse{Transfers: make([]TransferResponse, 0, len(ts))}
	for _, t := range ts {
		out.Transfers = append(out.Transfers, TransferResponse{
			ID:        t.ID,
			From:      t.From.String(),
			To:        t.To.String(),
			Amount:    t.Amount,
			Memo:      t.Memo,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}
