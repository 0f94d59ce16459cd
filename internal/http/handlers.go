package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"securevision/internal/bot"
	"securevision/internal/domain"
	"securevision/internal/repository"
	"securevision/internal/service"
)

type Server struct {
	engine   *gin.Engine
	bot      *bot.Bot
	accounts *service.AccountService
	catalog  *service.CatalogService
	checkout *service.CheckoutService
	payments *service.PaymentService
	tasks    *service.TaskService
}

func NewServer(b *bot.Bot, accounts *service.AccountService, catalog *service.CatalogService, checkout *service.CheckoutService, payments *service.PaymentService, tasks *service.TaskService) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, bot: b, accounts: accounts, catalog: catalog, checkout: checkout, payments: payments, tasks: tasks}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/events", s.handleEvent)

		catalog := v1.Group("/catalog")
		catalog.GET("", s.searchCatalog)
		catalog.GET(":id", s.getCatalogItem)

		v1.POST("/payments/simulate", s.simulatePayment)

		accounts := v1.Group("/accounts")
		accounts.GET(":external_id", s.getAccount)
		accounts.GET(":external_id/orders", s.listOrders)

		tasks := v1.Group("/tasks")
		tasks.POST("", s.createTask)
		tasks.GET(":id", s.getTask)
		tasks.PUT(":id", s.updateTask)
		tasks.DELETE(":id", s.deleteTask)
		tasks.GET("", s.listTasks)
	}
}

// @Summary Deliver conversation event
// @Tags events
// @Accept json
// @Produce json
// @Param input body bot.Event true "Event"
// @Success 200 {object} bot.Reply
// @Failure 400 {object} map[string]string
// @Router /events [post]
func (s *Server) handleEvent(c *gin.Context) {
	var ev bot.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	reply, err := s.bot.HandleEvent(c, ev)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// @Summary Search catalog
// @Tags catalog
// @Produce json
// @Param min_cameras query int false "Min camera count"
// @Param min_area query int false "Min coverage area"
// @Param max_price query number false "Max price"
// @Success 200 {array} domain.CatalogItem
// @Failure 400 {object} map[string]string
// @Router /catalog [get]
func (s *Server) searchCatalog(c *gin.Context) {
	var f repository.CatalogFilter
	if v := c.Query("min_cameras"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinCameras = x
		}
	}
	if v := c.Query("min_area"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinArea = x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.catalog.Search(c, f)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get catalog item by id
// @Tags catalog
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} domain.CatalogItem
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /catalog/{id} [get]
func (s *Server) getCatalogItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	item, err := s.catalog.GetItem(c, id)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

type simulatePaymentReq struct {
	ExternalID int64   `json:"external_id"`
	Amount     float64 `json:"amount"`
}

// @Summary Simulate top-up payment
// @Tags payments
// @Accept json
// @Produce json
// @Param input body simulatePaymentReq true "Payment"
// @Success 200 {object} domain.Account
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/simulate [post]
func (s *Server) simulatePayment(c *gin.Context) {
	var req simulatePaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := s.payments.SimulateTopUp(c, req.ExternalID, req.Amount)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary Get account by external id
// @Tags accounts
// @Produce json
// @Param external_id path int true "External ID"
// @Success 200 {object} domain.Account
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /accounts/{external_id} [get]
func (s *Server) getAccount(c *gin.Context) {
	externalID, err := parseID(c.Param("external_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	a, err := s.accounts.GetByExternalID(c, externalID)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary List account orders, newest first
// @Tags accounts
// @Produce json
// @Param external_id path int true "External ID"
// @Success 200 {array} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /accounts/{external_id}/orders [get]
func (s *Server) listOrders(c *gin.Context) {
	externalID, err := parseID(c.Param("external_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	a, err := s.accounts.GetByExternalID(c, externalID)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	orders, err := s.checkout.ListOrders(c, a.ID)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Task handlers
type taskReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int64  `json:"owner_id"`
}

// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Param input body taskReq true "Task"
// @Success 201 {object} domain.Task
// @Failure 400 {object} map[string]string
// @Router /tasks [post]
func (s *Server) createTask(c *gin.Context) {
	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := s.tasks.Create(c, domain.Task{Title: req.Title, Description: req.Description, OwnerID: req.OwnerID})
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary Get task by id
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} domain.Task
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [get]
func (s *Server) getTask(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	t, err := s.tasks.GetByID(c, id)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Update task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param input body taskReq true "Update"
// @Success 200 {object} domain.Task
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [put]
func (s *Server) updateTask(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := s.tasks.Update(c, domain.Task{ID: id, Title: req.Title, Description: req.Description, OwnerID: req.OwnerID})
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Delete task
// @Tags tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [delete]
func (s *Server) deleteTask(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.tasks.Delete(c, id); err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List tasks
// @Tags tasks
// @Produce json
// @Success 200 {array} domain.Task
// @Router /tasks [get]
func (s *Server) listTasks(c *gin.Context) {
	list, err := s.tasks.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch err {
	case service.ErrInvalidInput:
		return http.StatusBadRequest
	case service.ErrInsufficientFunds:
		return http.StatusConflict
	case service.ErrUnknownAccount:
		return http.StatusNotFound
	case repository.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
