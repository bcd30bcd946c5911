package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ecom-returns/internal/httpx"
	"github.com/MikeMC777/ecom-returns/internal/money"
	"github.com/MikeMC777/ecom-returns/internal/pagination"
	prod "github.com/MikeMC777/ecom-returns/internal/product"
)

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, prod.HTTPError{Error: msg})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// ownerScope is the merchant id writes are restricted to; admins are unrestricted.
func ownerScope(c *gin.Context) int64 {
	if httpx.Role(c) == "ADMIN" {
		return 0
	}
	id, _ := httpx.UserID(c)
	return id
}

// listProductsHandler godoc
// @Summary      List products
// @Description  Paginated list of active products, newest first, optionally filtered by name.
// @Tags         products
// @Produce      json
// @Param        page   query  int     false  "Page (1-based)"
// @Param        limit  query  int     false  "Page size (max 100)"
// @Param        name   query  string  false  "Case-insensitive name filter"
// @Success      200  {object}  prod.ListResponse
// @Failure      500  {object}  prod.HTTPError
// @Router       /products [get]
func listProductsHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pagination.Parse(c.Query("page"), c.Query("limit"))
		items, total, err := repo.List(c.Request.Context(), prod.Query{Name: c.Query("name"), Page: page})
		if err != nil {
			log.Printf("[product] list: %v", err)
			writeError(c, http.StatusInternalServerError, "could not list products")
			return
		}
		m := pagination.NewMeta(page, total)
		c.JSON(http.StatusOK, prod.ListResponse{
			Data: items,
			Meta: prod.Meta{Total: m.Total, Page: m.Page, Limit: m.Limit, TotalPages: m.TotalPages},
		})
	}
}

// getProductHandler godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id   path      int  true  "Product ID"
// @Success  200  {object}  prod.Product
// @Failure  404  {object}  prod.HTTPError
// @Router   /products/{id} [get]
func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		p, err := repo.GetByID(c.Request.Context(), id)
		if errors.Is(err, prod.ErrNotFound) {
			writeError(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			log.Printf("[product] get id=%d: %v", id, err)
			writeError(c, http.StatusInternalServerError, "could not load product")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// createProductHandler godoc
// @Summary   Create a product
// @Tags      products
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      prod.CreateProductRequest  true  "Product"
// @Success   201   {object}  prod.Product
// @Failure   400   {object}  prod.HTTPError
// @Failure   401   {object}  prod.HTTPError
// @Failure   403   {object}  prod.HTTPError
// @Router    /products [post]
func createProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in prod.CreateProductRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			writeError(c, http.StatusBadRequest, "name is required")
			return
		}
		price, err := money.Parse(in.Price)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		merchantID, _ := httpx.UserID(c)
		p := &prod.Product{MerchantID: merchantID, Name: name, Description: strings.TrimSpace(in.Description), Price: price}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			log.Printf("[product] create: %v", err)
			writeError(c, http.StatusInternalServerError, "could not create product")
			return
		}
		log.Printf("[product] created id=%d merchant=%d price=%s", p.ID, p.MerchantID, p.Price)
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary      Update a product
// @Description  Partial update. Only the owning merchant or an admin may update. Orders keep their price snapshot.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                        true  "Product ID"
// @Param        body  body      prod.UpdateProductRequest  true  "Fields to change"
// @Success      200   {object}  prod.Product
// @Failure      400   {object}  prod.HTTPError
// @Failure      404   {object}  prod.HTTPError
// @Router       /products/{id} [put]
func updateProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in prod.UpdateProductRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		p := &prod.Product{
			ID:          id,
			MerchantID:  ownerScope(c),
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
		}
		updatePrice := strings.TrimSpace(in.Price) != ""
		if updatePrice {
			price, err := money.Parse(in.Price)
			if err != nil {
				writeError(c, http.StatusBadRequest, err.Error())
				return
			}
			p.Price = price
		}

		ctx := c.Request.Context()
		err := repo.Update(ctx, p, updatePrice)
		if errors.Is(err, prod.ErrNotFound) {
			writeError(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			log.Printf("[product] update id=%d: %v", id, err)
			writeError(c, http.StatusInternalServerError, "could not update product")
			return
		}
		out, err := repo.GetByID(ctx, id)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "could not reload product")
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// deleteProductHandler godoc
// @Summary      Delete a product
// @Description  Soft delete; existing orders are unaffected.
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  int  true  "Product ID"
// @Success      204
// @Failure      404  {object}  prod.HTTPError
// @Router       /products/{id} [delete]
func deleteProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		deleted, err := repo.SoftDelete(c.Request.Context(), id, ownerScope(c))
		if err != nil {
			log.Printf("[product] delete id=%d: %v", id, err)
			writeError(c, http.StatusInternalServerError, "could not delete product")
			return
		}
		if !deleted {
			writeError(c, http.StatusNotFound, "product not found")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
