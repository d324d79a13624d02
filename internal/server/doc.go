// Package server exposes a dispatcher over WebSocket.
//
// Each text frame carries one request envelope and is answered by one text
// frame carrying the response envelope with the same correlationId. Replies
// may arrive in any order; clients match them by correlationId, never by
// position. Requests from every connection share the one dispatcher worker.
package server
