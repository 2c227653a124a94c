package model

import "time"

type NoticeKind string

const (
	NoticeOutOfStock   NoticeKind = "out_of_stock"
	NoticeAddFailed    NoticeKind = "add_failed"
	NoticeRemoveFailed NoticeKind = "remove_failed"
	NoticeUpdateFailed NoticeKind = "update_failed"
)

// ユーザーに見せるメッセージ（トースト相当）
var noticeMessages = map[NoticeKind]string{
	NoticeOutOfStock:   "Requested quantity out of stock",
	NoticeAddFailed:    "Error adding product",
	NoticeRemoveFailed: "Error removing product",
	NoticeUpdateFailed: "Error changing product quantity",
}

type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ProductID int64      `json:"product_id"`
	At        time.Time  `json:"at"`
}

func NewNotice(kind NoticeKind, productID int64, now time.Time) Notice {
	return Notice{
		Kind:      kind,
		Message:   noticeMessages[kind],
		ProductID: productID,
		At:        now,
	}
}
