package sqlinline

const donationColumns = `id, donor_name, amount_cents, payment_method, note, transaction_date,
  counts_toward_total, order_description, photoshoot_type, created_at, updated_at`

const QListDonations = `--sql 30b28742-07ba-45e3-b205-09933bf2e637
select ` + donationColumns + `
from donations
order by transaction_date desc, created_at desc
limit $1::int offset $2::int;
`

const QSelectDonationByID = `--sql 3a2ad6fc-69df-45aa-b60d-8c8805575f42
select ` + donationColumns + `
from donations
where id = $1::uuid
limit 1;
`

const QInsertDonation = `--sql e2440b9e-b59b-4e8a-97ac-81d8436f2e02
insert into donations(id, donor_name, amount_cents, payment_method, note, transaction_date,
  counts_toward_total, order_description, photoshoot_type, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::bigint, $3::text, $4::text, $5::date,
  $6::boolean, nullif($7::text, ''), nullif($8::text, ''), now(), now())
returning id, created_at, updated_at;
`

const QUpdateDonation = `--sql 860ea030-758f-47c5-b010-f07afef0525b
update donations
set donor_name = $2::text,
    amount_cents = $3::bigint,
    payment_method = $4::text,
    note = $5::text,
    transaction_date = $6::date,
    counts_toward_total = $7::boolean,
    order_description = nullif($8::text, ''),
    photoshoot_type = nullif($9::text, ''),
    updated_at = now()
where id = $1::uuid
returning updated_at;
`

const QDeleteDonation = `--sql 04029062-abb2-4635-8ed7-62a05b435639
delete from donations where id = $1::uuid;
`

const QDonationTotals = `--sql 0b6b960a-7e57-42c5-a7bf-0cc001d5ffb6
select coalesce(sum(amount_cents), 0)::bigint, count(*)::int
from donations
where counts_toward_total;
`
