package main

import "github.com/d60-Lab/bookstore/internal/cmd"

// @title Bookstore API
// @version 1.0
// @description 网上书店后端：图书目录、库存、收货地址、订单、收藏
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-KEY
func main() {
	cmd.Execute()
}
