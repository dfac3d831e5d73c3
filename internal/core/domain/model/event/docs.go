// Package event defines the envelope every stage publishes and the order payload
// it carries. Both mirror the Event Grid schema consumed by the tracking UI:
//
//	{ id, eventType, subject, eventTime, data, dataVersion }
//
// Decoding is lenient where producers differ (ids and coordinates may be strings or
// numbers, timestamps may lack a zone); encoding is always canonical.
package event
