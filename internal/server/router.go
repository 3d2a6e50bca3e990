package server

import (
	"errors"
	"net/http"

	handler "bid-ledger/services/bidding/handler"
	"bid-ledger/utils"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService handler.BiddingServiceInterface, feed handler.NotificationFeedInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(CORSMiddleware)

	biddingHandler := handler.NewBiddingHandler(biddingService)
	notificationHandler := handler.NewNotificationHandler(feed)

	bids := router.Group("/bids")
	{
		bids.GET("/outcomes", biddingHandler.GetOutcomesHandler)
	}

	items := router.Group("/items")
	{
		items.GET("", biddingHandler.ListItemsHandler)
		items.GET("/:item_id", biddingHandler.GetItemHandler)
		items.GET("/:item_id/bids", biddingHandler.GetBidsByItemHandler)
		items.POST("/:item_id/bids", biddingHandler.RecordBidHandler)
		items.GET("/:item_id/winning", biddingHandler.GetWinningBidHandler)
	}

	notifications := router.Group("/notifications")
	{
		notifications.GET("/recent", notificationHandler.RecentNotificationsHandler)
	}

	// preflight requests for any path are answered by CORSMiddleware
	router.NoRoute(func(c *gin.Context) {
		utils.JSONError(c, http.StatusNotFound, errors.New("route not found"), "route not found")
	})

	return router
}
