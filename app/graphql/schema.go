// Package graphql is the read-only GraphQL view of the catalog: products,
// a single product and categories. Writes stay on the REST API.
package graphql

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/apperr"
	gqlserver "github.com/ultranet/catalog/pkg/graphql"
	"github.com/ultranet/catalog/pkg/logger"
)

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"categoryId":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"categoryName": &graphql.Field{Type: graphql.String},
		"description":  &graphql.Field{Type: graphql.String},
		"price":        &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"stock":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"enabled":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"createdAt":    &graphql.Field{Type: graphql.String},
		"updatedAt":    &graphql.Field{Type: graphql.String},
	},
})

var productPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductPage",
	Fields: graphql.Fields{
		"items":       &graphql.Field{Type: graphql.NewList(productType)},
		"total":       &graphql.Field{Type: graphql.Int},
		"perPage":     &graphql.Field{Type: graphql.Int},
		"currentPage": &graphql.Field{Type: graphql.Int},
		"lastPage":    &graphql.Field{Type: graphql.Int},
	},
})

func product(p models.Product) map[string]any {
	price, _ := p.Price.Round(2).Float64()
	var description any
	if p.Description != nil {
		description = *p.Description
	}
	return map[string]any{
		"id":           int(p.ID),
		"name":         p.Name,
		"categoryId":   int(p.CategoryID),
		"categoryName": p.CategoryName(),
		"description":  description,
		"price":        price,
		"stock":        p.Stock,
		"enabled":      p.Enabled,
		"createdAt":    p.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewSchema builds the query root over the catalog services.
func NewSchema(products *services.ProductService, categories *services.CategoryService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: productPageType,
				Args: graphql.FieldConfigArgument{
					"search":     &graphql.ArgumentConfig{Type: graphql.String},
					"status":     &graphql.ArgumentConfig{Type: graphql.Boolean},
					"categoryId": &graphql.ArgumentConfig{Type: graphql.Int},
					"page":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					page, err := products.List(p.Context, filterFrom(p.Args))
					if err != nil {
						return nil, public(p.Context, err)
					}
					items := make([]map[string]any, 0, len(page.Items))
					for _, item := range page.Items {
						items = append(items, product(item))
					}
					return map[string]any{
						"items":       items,
						"total":       int(page.Total),
						"perPage":     page.PerPage,
						"currentPage": page.CurrentPage,
						"lastPage":    page.LastPage,
					}, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id < 1 {
						return nil, nil
					}
					found, err := products.Find(p.Context, uint(id))
					if err != nil {
						return nil, public(p.Context, err)
					}
					return product(found), nil
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					list, err := categories.All(p.Context)
					if err != nil {
						return nil, public(p.Context, err)
					}
					out := make([]map[string]any, 0, len(list))
					for _, c := range list {
						out = append(out, map[string]any{"id": int(c.ID), "name": c.Name})
					}
					return out, nil
				},
			},
		},
	})
	return gqlserver.NewSchema(query)
}

// public reduces err to the message a client may see. Server errors are
// logged with their cause.
func public(ctx context.Context, err error) error {
	appErr := apperr.From(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithCtx(ctx).Error("graphql: resolver failed", "error", err)
	}
	return errors.New(appErr.Message)
}

func filterFrom(args map[string]any) repositories.ProductFilter {
	f := repositories.ProductFilter{Page: 1}
	if s, ok := args["search"].(string); ok {
		f.Search = s
	}
	if b, ok := args["status"].(bool); ok {
		f.Status = &b
	}
	if id, ok := args["categoryId"].(int); ok && id > 0 {
		cid := uint(id)
		f.CategoryID = &cid
	}
	if n, ok := args["page"].(int); ok && n > 0 {
		f.Page = n
	}
	return f
}
