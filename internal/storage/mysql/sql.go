package mysql

const upsertVenueSQL = `
INSERT INTO venues
  (id, name, local_name, category, cuisine, address, price_tier, average_price, rating,
   review_count, sentiment_score, image_url, lat, lng, insight, keywords, open_now, distance_km,
   catalog_pos)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name            = VALUES(name),
  local_name      = VALUES(local_name),
  category        = VALUES(category),
  cuisine         = VALUES(cuisine),
  address         = VALUES(address),
  price_tier      = VALUES(price_tier),
  average_price   = VALUES(average_price),
  rating          = VALUES(rating),
  review_count    = VALUES(review_count),
  sentiment_score = VALUES(sentiment_score),
  image_url       = VALUES(image_url),
  lat             = VALUES(lat),
  lng             = VALUES(lng),
  insight         = VALUES(insight),
  keywords        = VALUES(keywords),
  open_now        = VALUES(open_now),
  distance_km     = VALUES(distance_km),
  catalog_pos     = COALESCE(VALUES(catalog_pos), catalog_pos),
  updated_at      = CURRENT_TIMESTAMP
`

// Reviews go with the venue through the foreign key cascade.
const deleteVenueSQL = `DELETE FROM venues WHERE id = ?`

const deleteReviewsSQL = `DELETE FROM reviews WHERE venue_id = ?`

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n  (venue_id, id, author, rating, `text`, date_label, sentiment, keywords)\nVALUES "

const insertMissSQL = `
INSERT INTO ingest_misses (id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const venueColumns = `
  id, name, local_name, category, cuisine, address, price_tier, average_price, rating,
  review_count, sentiment_score, image_url, lat, lng, insight, keywords, open_now, distance_km
`

// Catalog order is source-listing position; venues without one follow in
// ingestion order.
const listVenuesSQL = `SELECT` + venueColumns + `FROM venues ORDER BY catalog_pos IS NULL, catalog_pos, seq`

const getVenueSQL = `SELECT` + venueColumns + `FROM venues WHERE id = ?`

const reviewColumns = "venue_id, id, author, rating, `text`, date_label, sentiment, keywords"

const listReviewsSQL = `SELECT ` + reviewColumns + ` FROM reviews ORDER BY seq`

const venueReviewsSQL = `SELECT ` + reviewColumns + ` FROM reviews WHERE venue_id = ? ORDER BY seq`
