package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ordersystem/internal/models"
	"ordersystem/internal/query"
	"ordersystem/internal/service"
	"ordersystem/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	products *service.ProductService
	orders   *service.OrderService
	users    *service.UserService
	tokens   TokenValidator
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products *service.ProductService,
	orders *service.OrderService,
	users *service.UserService,
	tokens TokenValidator,
) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		users:    users,
		tokens:   tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	v1.POST("/users/log-in", h.logIn)
	v1.POST("/users/register", h.registerUser)

	authed := v1.Group("")
	authed.Use(AuthRequired(h.tokens))
	{
		authed.GET("/products", h.listProducts)
		authed.GET("/products/:id", h.getProduct)
		authed.POST("/orders", h.createOrder)
		authed.GET("/orders/mine", h.listOwnOrders)
	}

	staff := authed.Group("")
	staff.Use(RequireRoles(models.RoleAdmin, models.RoleModerator))
	{
		staff.POST("/products", h.createProduct)
		staff.PUT("/products/:id", h.updateProduct)
		staff.DELETE("/products/:id", h.deleteProduct)
		staff.GET("/orders", h.listOrders)
		staff.GET("/orders/:id", h.getOrder)
		staff.GET("/orders/user/:userId", h.listUserOrders)
	}

	admin := authed.Group("")
	admin.Use(RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users/register-moderator", h.registerModerator)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// writeProductRequest carries catalog writes. Name and price invariants
// are enforced here, before the catalog is touched.
type writeProductRequest struct {
	Name  string  `json:"name" binding:"required,max=50"`
	Price float64 `json:"price" binding:"required,gt=0"`
}

func (h *Handler) listProducts(c *gin.Context) {
	var opts query.Options
	if err := c.ShouldBindQuery(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query options",
			"details": err.Error(),
		})
		return
	}

	products, err := h.products.ListProducts(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req writeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), req.Name, req.Price)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req writeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	err := h.products.UpdateProduct(c.Request.Context(), c.Param("id"), req.Name, req.Price)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	err := h.products.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// orderRequest carries the raw product ID list. Duplicates and unknown
// IDs are legal; they are resolved away before the order is built.
type orderRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
}

func (h *Handler) createOrder(c *gin.Context) {
	identity := CallerIdentity(c)

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	detail, err := h.orders.CreateOrder(c.Request.Context(), req.ProductIDs, identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoValidProducts) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid product ids supplied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, detail)
}

func (h *Handler) getOrder(c *gin.Context) {
	detail, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) listOrders(c *gin.Context) {
	details, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) listOwnOrders(c *gin.Context) {
	identity := CallerIdentity(c)

	details, err := h.orders.ListOrdersByOwner(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Owner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) listUserOrders(c *gin.Context) {
	details, err := h.orders.ListOrdersByOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, service.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Owner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, details)
}

type registerRequest struct {
	FirstName string `json:"first_name" binding:"required,min=3,max=120"`
	LastName  string `json:"last_name" binding:"required,min=3,max=120"`
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=8,max=100"`
}

type logInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type logInResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Token     string `json:"token"`
}

func (h *Handler) logIn(c *gin.Context) {
	var req logInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, logInResponse{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Token:     token,
	})
}

func (h *Handler) registerUser(c *gin.Context) {
	h.register(c, h.users.RegisterUser)
}

func (h *Handler) registerModerator(c *gin.Context) {
	h.register(c, h.users.RegisterModerator)
}

func (h *Handler) register(c *gin.Context, create func(context.Context, service.RegisterRequest) (*models.User, error)) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := create(c.Request.Context(), service.RegisterRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}
