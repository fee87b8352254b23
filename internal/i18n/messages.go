package i18n

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":                "请求参数错误",
		"error.not_found":                  "资源不存在",
		"error.internal":                   "服务器内部错误",
		"error.unauthorized":               "未登录或登录已失效",
		"error.rate_limited":               "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":     "限流服务不可用",
		"error.login_too_many":             "登录尝试过多，请 %d 秒后再试",
		"error.checkout_too_many":          "下单过于频繁，请 %d 秒后再试",
		"error.too_many_requests":          "请求过于频繁，请稍后再试",
		"error.user_id_invalid":            "用户ID无效",
		"error.user_id_type_invalid":       "用户ID类型错误",
		"error.auth_header_missing":        "缺少认证信息",
		"error.auth_header_invalid":        "认证信息格式错误",
		"error.jwt_secret_missing":         "认证服务未配置",
		"error.token_invalid":              "登录凭证无效",
		"error.token_revoked":              "登录凭证已失效，请重新登录",
		"error.user_disabled":              "账号已被禁用",
		"error.user_not_found":             "用户不存在",
		"error.user_fetch_failed":          "获取用户信息失败",
		"error.login_failed":               "登录失败",
		"error.telegram_auth_disabled":     "Telegram 登录未开启",
		"error.telegram_init_data_invalid": "Telegram 登录数据校验失败",
		"error.telegram_init_data_expired": "Telegram 登录数据已过期，请重新打开小程序",
		"error.category_fetch_failed":      "获取分类失败",
		"error.product_fetch_failed":       "获取商品失败",
		"error.product_not_found":          "商品不存在",
		"error.product_not_available":      "商品已下架",
		"error.cart_quantity_invalid":      "商品数量需在 1 到 99 之间",
		"error.cart_item_not_found":        "购物车中没有该商品",
		"error.cart_storage_unavailable":   "购物车暂不可用",
		"error.cart_fetch_failed":          "获取购物车失败",
		"error.cart_update_failed":         "更新购物车失败",
		"error.cart_empty":                 "购物车为空",
		"error.checkout_unavailable":       "暂不支持下单",
		"error.checkout_failed":            "下单失败",
		"error.order_item_invalid":         "订单商品无效",
		"error.order_customer_required":    "请填写收件人和联系电话",
		"error.order_create_failed":        "创建订单失败",
		"error.order_fetch_failed":         "获取订单失败",
		"error.order_not_found":            "订单不存在",
		"error.forbidden":                  "无权访问该资源",
		"error.captcha_required":           "请输入验证码",
		"error.captcha_invalid":            "验证码错误或已过期",
		"error.captcha_generate_failed":    "生成验证码失败",
		"error.admin_login_invalid":        "账号或密码错误",
		"error.admin_not_found":            "管理员不存在",
		"error.admin_fetch_failed":         "获取管理员失败",
		"error.admin_save_failed":          "保存管理员失败",
		"error.admin_delete_failed":        "删除管理员失败",
		"error.admin_username_invalid":     "账号需为 3 到 32 位小写字母、数字或 _.-",
		"error.admin_username_exists":      "账号已存在",
		"error.admin_self_delete":          "不能删除当前登录的管理员",
		"error.admin_last_super":           "至少需要保留一个超级管理员",
		"error.password_old_invalid":       "原密码错误",
		"error.password_weak":              "密码需至少 8 位且同时包含字母和数字",
		"error.password_change_failed":     "修改密码失败",
		"error.role_invalid":               "角色名称无效",
		"error.authz_unavailable":          "权限服务不可用",
		"error.authz_fetch_failed":         "获取权限失败",
		"error.authz_update_failed":        "更新权限失败",
		"error.category_not_found":         "分类不存在",
		"error.category_in_use":            "分类下仍有商品，无法删除",
		"error.category_save_failed":       "保存分类失败",
		"error.category_delete_failed":     "删除分类失败",
		"error.slug_exists":                "标识已被使用",
		"error.slug_invalid":               "标识只能包含小写字母、数字、- 和 _",
		"error.product_price_invalid":      "商品价格无效",
		"error.product_save_failed":        "保存商品失败",
		"error.product_delete_failed":      "删除商品失败",
		"error.order_status_invalid":       "订单状态无效",
		"error.order_status_transition":    "当前订单状态不允许该操作",
		"error.order_update_failed":        "更新订单失败",
		"error.user_status_invalid":        "用户状态无效",
		"error.user_update_failed":         "更新用户失败",
	},
	LocaleEnUS: {
		"error.bad_request":                "Invalid request",
		"error.not_found":                  "Not found",
		"error.internal":                   "Internal server error",
		"error.unauthorized":               "Please sign in",
		"error.rate_limited":               "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":     "Rate limiter unavailable",
		"error.login_too_many":             "Too many sign in attempts, retry in %d seconds",
		"error.checkout_too_many":          "Too many orders, retry in %d seconds",
		"error.too_many_requests":          "Too many requests, please try again later",
		"error.user_id_invalid":            "Invalid user id",
		"error.user_id_type_invalid":       "Invalid user id type",
		"error.auth_header_missing":        "Missing authorization header",
		"error.auth_header_invalid":        "Invalid authorization header",
		"error.jwt_secret_missing":         "Authentication is not configured",
		"error.token_invalid":              "Invalid token",
		"error.token_revoked":              "Session expired, please sign in again",
		"error.user_disabled":              "Account is disabled",
		"error.user_not_found":             "User not found",
		"error.user_fetch_failed":          "Failed to load user",
		"error.login_failed":               "Sign in failed",
		"error.telegram_auth_disabled":     "Telegram sign in is disabled",
		"error.telegram_init_data_invalid": "Telegram sign in data is invalid",
		"error.telegram_init_data_expired": "Telegram sign in data expired, please reopen the app",
		"error.category_fetch_failed":      "Failed to load categories",
		"error.product_fetch_failed":       "Failed to load products",
		"error.product_not_found":          "Product not found",
		"error.product_not_available":      "Product is not available",
		"error.cart_quantity_invalid":      "Quantity must be between 1 and 99",
		"error.cart_item_not_found":        "Item is not in the cart",
		"error.cart_storage_unavailable":   "Cart is temporarily unavailable",
		"error.cart_fetch_failed":          "Failed to load cart",
		"error.cart_update_failed":         "Failed to update cart",
		"error.cart_empty":                 "Cart is empty",
		"error.checkout_unavailable":       "Checkout is not available",
		"error.checkout_failed":            "Checkout failed",
		"error.order_item_invalid":         "Invalid order item",
		"error.order_customer_required":    "Recipient name and phone are required",
		"error.order_create_failed":        "Failed to create order",
		"error.order_fetch_failed":         "Failed to load orders",
		"error.order_not_found":            "Order not found",
		"error.forbidden":                  "You do not have permission to access this resource",
		"error.captcha_required":           "Captcha is required",
		"error.captcha_invalid":            "Captcha is invalid or expired",
		"error.captcha_generate_failed":    "Failed to generate captcha",
		"error.admin_login_invalid":        "Invalid username or password",
		"error.admin_not_found":            "Admin not found",
		"error.admin_fetch_failed":         "Failed to load admins",
		"error.admin_save_failed":          "Failed to save admin",
		"error.admin_delete_failed":        "Failed to delete admin",
		"error.admin_username_invalid":     "Username must be 3 to 32 lowercase letters, digits or _.-",
		"error.admin_username_exists":      "Username already exists",
		"error.admin_self_delete":          "You cannot delete yourself",
		"error.admin_last_super":           "At least one super admin must remain",
		"error.password_old_invalid":       "Current password is incorrect",
		"error.password_weak":              "Password must be at least 8 characters with letters and digits",
		"error.password_change_failed":     "Failed to change password",
		"error.role_invalid":               "Invalid role name",
		"error.authz_unavailable":          "Authorization service unavailable",
		"error.authz_fetch_failed":         "Failed to load permissions",
		"error.authz_update_failed":        "Failed to update permissions",
		"error.category_not_found":         "Category not found",
		"error.category_in_use":            "Category still has products",
		"error.category_save_failed":       "Failed to save category",
		"error.category_delete_failed":     "Failed to delete category",
		"error.slug_exists":                "Slug is already in use",
		"error.slug_invalid":               "Slug may contain only lowercase letters, digits, - and _",
		"error.product_price_invalid":      "Invalid product price",
		"error.product_save_failed":        "Failed to save product",
		"error.product_delete_failed":      "Failed to delete product",
		"error.order_status_invalid":       "Invalid order status",
		"error.order_status_transition":    "Order status cannot be changed this way",
		"error.order_update_failed":        "Failed to update order",
		"error.user_status_invalid":        "Invalid user status",
		"error.user_update_failed":         "Failed to update user",
	},
	LocaleRuRU: {
		"error.bad_request":                "Некорректный запрос",
		"error.not_found":                  "Не найдено",
		"error.internal":                   "Внутренняя ошибка сервера",
		"error.unauthorized":               "Требуется вход",
		"error.rate_limited":               "Слишком много запросов, повторите через %d с",
		"error.login_too_many":             "Слишком много попыток входа, повторите через %d с",
		"error.checkout_too_many":          "Слишком много заказов, повторите через %d с",
		"error.too_many_requests":          "Слишком много запросов, попробуйте позже",
		"error.token_invalid":              "Недействительный токен",
		"error.token_revoked":              "Сессия истекла, войдите снова",
		"error.user_disabled":              "Аккаунт заблокирован",
		"error.user_not_found":             "Пользователь не найден",
		"error.login_failed":               "Не удалось войти",
		"error.telegram_auth_disabled":     "Вход через Telegram отключен",
		"error.telegram_init_data_invalid": "Данные входа Telegram недействительны",
		"error.telegram_init_data_expired": "Данные входа Telegram устарели, откройте приложение заново",
		"error.product_not_found":          "Товар не найден",
		"error.product_not_available":      "Товар недоступен",
		"error.cart_quantity_invalid":      "Количество должно быть от 1 до 99",
		"error.cart_item_not_found":        "Товара нет в корзине",
		"error.cart_storage_unavailable":   "Корзина временно недоступна",
		"error.cart_empty":                 "Корзина пуста",
		"error.checkout_unavailable":       "Оформление заказа недоступно",
		"error.checkout_failed":            "Не удалось оформить заказ",
		"error.order_item_invalid":         "Некорректная позиция заказа",
		"error.order_customer_required":    "Укажите имя получателя и телефон",
		"error.order_create_failed":        "Не удалось создать заказ",
		"error.order_fetch_failed":         "Не удалось загрузить заказы",
		"error.order_not_found":            "Заказ не найден",
		"error.forbidden":                  "Недостаточно прав",
		"error.captcha_required":           "Введите код с картинки",
		"error.captcha_invalid":            "Неверный или устаревший код",
		"error.captcha_generate_failed":    "Не удалось создать код",
		"error.admin_login_invalid":        "Неверный логин или пароль",
		"error.admin_not_found":            "Администратор не найден",
		"error.admin_fetch_failed":         "Не удалось загрузить администраторов",
		"error.admin_save_failed":          "Не удалось сохранить администратора",
		"error.admin_delete_failed":        "Не удалось удалить администратора",
		"error.admin_username_invalid":     "Логин: от 3 до 32 строчных букв, цифр или _.-",
		"error.admin_username_exists":      "Логин уже занят",
		"error.admin_self_delete":          "Нельзя удалить себя",
		"error.admin_last_super":           "Должен остаться хотя бы один суперадминистратор",
		"error.password_old_invalid":       "Текущий пароль неверен",
		"error.password_weak":              "Пароль: не менее 8 символов, буквы и цифры",
		"error.password_change_failed":     "Не удалось сменить пароль",
		"error.role_invalid":               "Недопустимое имя роли",
		"error.authz_unavailable":          "Сервис прав недоступен",
		"error.authz_fetch_failed":         "Не удалось загрузить права",
		"error.authz_update_failed":        "Не удалось обновить права",
		"error.category_not_found":         "Категория не найдена",
		"error.category_in_use":            "В категории есть товары",
		"error.category_save_failed":       "Не удалось сохранить категорию",
		"error.category_delete_failed":     "Не удалось удалить категорию",
		"error.slug_exists":                "Slug уже используется",
		"error.slug_invalid":               "Slug: только строчные буквы, цифры, - и _",
		"error.product_price_invalid":      "Недопустимая цена",
		"error.product_save_failed":        "Не удалось сохранить товар",
		"error.product_delete_failed":      "Не удалось удалить товар",
		"error.order_status_invalid":       "Недопустимый статус заказа",
		"error.order_status_transition":    "Нельзя перевести заказ в этот статус",
		"error.order_update_failed":        "Не удалось обновить заказ",
		"error.user_status_invalid":        "Недопустимый статус пользователя",
		"error.user_update_failed":         "Не удалось обновить пользователя",
	},
}
