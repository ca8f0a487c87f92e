// Package stream pushes refreshed stock records to WebSocket clients.
//
// The Hub implements refresher.Publisher. Each published record is encoded
// once and queued for every connected client; a per-client writer drains the
// queue, so a slow client never blocks the refresh cycle. When a client's
// queue is full the oldest message is dropped.
//
// Wire format (server to client only):
//
//	{"type":"stock_update","stock":{...StockRecord...}}
package stream
