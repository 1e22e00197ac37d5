package analytics

// SchemaReference documents the analytical schema for callers composing
// SQL. products keys are VARCHAR while other tables use numeric keys, so
// joins against products must cast.
const SchemaReference = `Esquema analítico (solo SELECT + LIMIT).
TIPOS: products tiene TODO VARCHAR. Otras tablas bigint/double.
JOIN con products: CAST(x.product_id AS VARCHAR) = p.product_id
Texto: LOWER(name) LIKE '%x%'.

Tablas:
  customers(customer_id, tipo_id, dni, name, last_name1, last_name2, phone, account_status, is_premium)
  customer_emails(email_id, customer_id, email, email_type, is_primary)
  addresses(address_id, customer_id, address_line1, city, department)
  categories(category_id, name)
  brands(brand_id, name)
  products(product_id, category_id, brand_id, name, description, specifications, warranty_months, return_days, is_final_sale, price, active)
  stock(stock_id, product_id, stock_qty, reserved_qty, restock_date)
  orders(order_id, customer_id, address_id, order_date, status, subtotal, total_amount, payment_method, delivery_method)
  order_items(item_id, order_id, product_id, qty, unit_price, discount_per_unit, warranty_expires_at, return_deadline, item_status)
  tracking(tracking_id, order_id, timestamp, status, location)
  shipments(shipment_id, order_id, carrier, tracking_number, shipment_status, estimated_delivery_date)
  cards(card_id, customer_id, card_type, bank, last_four)
  promotions(promotion_id, promotion_name, promotion_type, discount_value, start_date, end_date, active)
  promotion_usage(usage_id, promotion_id, customer_id, order_id)
  support_tickets(ticket_id, customer_id, order_id, subject, category, status, priority)`
