package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landscape_dispatch/internal/services"
)

// OrderController surfaces the upstream order feed to the dispatch board.
type OrderController struct {
	Engine *services.AssignmentEngine
}

func NewOrderController(engine *services.AssignmentEngine) *OrderController {
	return &OrderController{Engine: engine}
}

// ListAssignable returns paid orders with no active assignment.
func (ctl *OrderController) ListAssignable(c *gin.Context) {
	orders, err := ctl.Engine.AssignableOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// ListPending returns orders still awaiting payment. Never assignable.
func (ctl *OrderController) ListPending(c *gin.Context) {
	orders, err := ctl.Engine.PendingOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}
