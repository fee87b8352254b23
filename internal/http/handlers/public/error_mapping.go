package public

import (
	"errors"

	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/orderclient"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var userContextErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidToken, code: response.CodeUnauthorized, key: "error.unauthorized"},
	{target: service.ErrCartStorageUnavailable, code: response.CodeUnavailable, key: "error.cart_storage_unavailable"},
}

var cartMutationErrorRules = []mappedHandlerError{
	{target: service.ErrCartQuantityInvalid, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidToken, code: response.CodeUnauthorized, key: "error.unauthorized"},
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, key: "error.order_item_invalid"},
	{target: service.ErrOrderCustomerRequired, code: response.CodeBadRequest, key: "error.order_customer_required"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: cart.ErrEmptyCart, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: cart.ErrSubmitterMissing, code: response.CodeUnavailable, key: "error.checkout_unavailable"},
}

func respondCartError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(userContextErrorRules, cartMutationErrorRules), response.CodeInternal, fallbackKey)
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "error.order_create_failed")
}

// respondCheckoutError 结算失败时优先返回远端订单服务的提示
func respondCheckoutError(c *gin.Context, err error) {
	var apiErr *orderclient.APIError
	if errors.As(err, &apiErr) {
		if msg := cart.MessageFrom(err); msg != "" {
			respondErrorWithMsg(c, response.CodeBadGateway, msg, err)
			return
		}
	}
	if errors.Is(err, orderclient.ErrResponseInvalid) {
		respondError(c, response.CodeBadGateway, "error.checkout_failed", err)
		return
	}
	respondWithMappedError(c, err, concatMappedHandlerErrors(userContextErrorRules, checkoutErrorRules, orderCreateErrorRules), response.CodeInternal, "error.checkout_failed")
}
