package handler

import (
	"time"

	exhandler "landregistry/internal/exchange/handler"
	prophandler "landregistry/internal/property/handler"
	"landregistry/internal/routing/service"
)

type RouteResponse struct {
	Address     string `json:"address"`
	Role        string `json:"role"`
	Verified    bool   `json:"verified"`
	Destination string `json:"destination"`
}

func toRouteResponse(r *service.Route) RouteResponse {
	return RouteResponse{
		Address:     r.Address.String(),
		Role:        string(r.Role),
		Verified:    r.Verified,
		Destination: string(r.Destination),
	}
}

type AccountSummary struct {
	Address string `json:"address"`
	Short   string `json:"short"`
	Balance int64  `json:"balance"`
	ChainID int64  `json:"chain_id"`
}

type DashboardResponse struct {
	Route      RouteResponse                  `json:"route"`
	Account    AccountSummary                 `json:"account"`
	Properties []prophandler.PropertyResponse `json:"properties"`
	Sales      []exhandler.SaleResponse       `json:"sales"`
	Requests   []exhandler.RequestResponse    `json:"requests"`
	FetchedAt  time.Time                      `json:"fetched_at"`
}

func toDashboardResponse(d *service.Dashboard) DashboardResponse {
	return DashboardResponse{
		Route: toRouteResponse(&d.Route),
		Account: AccountSummary{
			Address: d.Account.Address.String(),
			Short:   d.Account.Address.Short(),
			Balance: d.Account.Balance,
			ChainID: d.Account.ChainID,
		},
		Properties: prophandler.ToListResponse(d.Properties).Properties,
		Sales:      exhandler.ToSaleListResponse(d.Sales).Sales,
		Requests:   exhandler.ToRequestListResponse(d.Requests).Requests,
		FetchedAt:  d.FetchedAt,
	}
}
