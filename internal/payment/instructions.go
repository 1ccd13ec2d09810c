package payment

import "strings"

// Method names mirror order.PaymentMethod values.
const (
	MethodCOD          = "COD"
	MethodBankTransfer = "BANK_TRANSFER"
	MethodVNPay        = "VNPAY"
	MethodMoMo         = "MOMO"
	MethodCreditCard   = "CREDIT_CARD"
)

var InstructionMap = map[string][]string{
	MethodCOD: {
		"Đơn hàng sẽ được giao đến địa chỉ nhận hàng",
		"Chuẩn bị {{amount}} tiền mặt khi shipper đến",
		"Thanh toán trực tiếp cho shipper và giữ lại biên nhận",
	},

	MethodBankTransfer: {
		"Chuyển khoản {{amount}} vào tài khoản của cửa hàng",
		"Ghi nội dung chuyển khoản là mã đơn hàng {{order_number}}",
		"Đơn hàng được xác nhận sau khi cửa hàng nhận được tiền",
	},

	MethodVNPay: {
		"Bấm nút thanh toán để chuyển sang cổng VNPay",
		"Chọn ngân hàng hoặc quét mã QR và thanh toán {{amount}}",
		"Hoàn tất trong 15 phút, sau đó liên kết thanh toán sẽ hết hạn",
	},

	MethodMoMo: {
		"Mở ứng dụng MoMo và quét mã QR của đơn hàng {{order_number}}",
		"Xác nhận thanh toán {{amount}}",
	},

	MethodCreditCard: {
		"Nhập thông tin thẻ (số thẻ, ngày hết hạn, CVV)",
		"Xác thực 3D Secure bằng mã OTP từ ngân hàng phát hành",
		"Chờ giao dịch {{amount}} được xử lý thành công",
	},
}

func GetInstructions(method string) []string {
	if steps, ok := InstructionMap[method]; ok {
		return steps
	}

	return []string{
		"Làm theo hướng dẫn thanh toán trên trang này",
	}
}

type InstructionVars map[string]string

func InjectVariables(
	steps []string,
	vars InstructionVars,
) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(
				updated,
				"{{"+key+"}}",
				value,
			)
		}
		result = append(result, updated)
	}

	return result
}
