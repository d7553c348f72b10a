package service

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/gorm"

	"ppdb_backend/internals/configs"
	applicationModel "ppdb_backend/internals/features/admission/application/model"
)

var SnapClient snap.Client

// InitMidtrans harus dipanggil saat bootstrap app.
func InitMidtrans(serverKey string, useProduction bool) {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	SnapClient.New(serverKey, env)
}

// GenerateRegistrationFeeToken membuat token Snap untuk biaya pendaftaran.
// OrderID disimpan di pendaftaran supaya webhook bisa merutekan notifikasi.
func GenerateRegistrationFeeToken(db *gorm.DB, a *applicationModel.Application, name, email string, amountIDR int64) (string, error) {
	orderID := fmt.Sprintf("PPDB-%s-%s-%d", a.School, a.ID.String()[:8], time.Now().Unix())

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amountIDR,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: name,
			Email: email,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    "registration-fee",
			Name:  fmt.Sprintf("Biaya Pendaftaran PPDB %s", a.School),
			Price: amountIDR,
			Qty:   1,
		}},
	}

	resp, err := SnapClient.CreateTransaction(req)
	if err != nil {
		return "", err
	}

	a.PaymentOrderID = &orderID
	a.PaymentStatus = applicationModel.PaymentPending
	if err := db.Save(a).Error; err != nil {
		return "", err
	}
	return resp.Token, nil
}

// verifyWebhookSignature: SHA512(order_id + status_code + gross_amount +
// server_key) harus cocok dengan signature_key di payload.
func verifyWebhookSignature(body map[string]interface{}) bool {
	orderID, _ := body["order_id"].(string)
	statusCode, _ := body["status_code"].(string)
	gross, _ := body["gross_amount"].(string)
	sig, _ := body["signature_key"].(string)
	if sig == "" {
		return false
	}
	sum := sha512.Sum512([]byte(orderID + statusCode + gross + configs.MidtransServerKey))
	return hex.EncodeToString(sum[:]) == sig
}

// HandlePaymentWebhook dipanggil saat menerima notifikasi dari Midtrans.
func HandlePaymentWebhook(db *gorm.DB, body map[string]interface{}) error {
	orderID, ok1 := body["order_id"].(string)
	status, ok2 := body["transaction_status"].(string)
	if !ok1 || !ok2 {
		log.Println("[ERROR] Payload webhook tidak lengkap:", body)
		return fmt.Errorf("invalid payload")
	}
	if !verifyWebhookSignature(body) {
		log.Println("[ERROR] Signature webhook tidak valid, order:", orderID)
		return fmt.Errorf("invalid signature")
	}

	log.Println("📄 Order ID:", orderID)
	log.Println("📌 Transaction Status:", status)

	var a applicationModel.Application
	if err := db.Where("payment_order_id = ?", orderID).First(&a).Error; err != nil {
		log.Println("[ERROR] Pendaftaran untuk order tidak ditemukan:", err)
		return fmt.Errorf("application with order_id %s not found", orderID)
	}

	switch status {
	case "capture", "settlement":
		now := time.Now()
		a.PaymentStatus = applicationModel.PaymentPaid
		a.PaidAt = &now
	case "expire":
		a.PaymentStatus = applicationModel.PaymentExpired
	case "cancel", "deny":
		a.PaymentStatus = applicationModel.PaymentCanceled
	default:
		log.Println("[INFO] Status tidak diproses:", status)
		return nil
	}

	if err := db.Save(&a).Error; err != nil {
		log.Println("[ERROR] Gagal menyimpan status pembayaran:", err)
		return err
	}
	return nil
}
