package sqlinline

const imageColumns = `id, filename, alt, category, url, width, height, size, created_at`

// $1 lowercased categories (empty or null = all), $2 search text, $3 limit, $4 offset.
const QListImages = `--sql 96e50ab7-96fe-4ebd-8e93-6cc50e38d47e
select ` + imageColumns + `
from images
where (coalesce(cardinality($1::text[]), 0) = 0 or lower(category) = any($1::text[]))
  and ($2::text = '' or filename ilike '%' || $2::text || '%' or alt ilike '%' || $2::text || '%')
order by created_at desc
limit $3::int offset $4::int;
`

const QCountImages = `--sql 169fbaae-e9d8-44ec-895d-5e0135fc573f
select count(*)::int
from images
where (coalesce(cardinality($1::text[]), 0) = 0 or lower(category) = any($1::text[]))
  and ($2::text = '' or filename ilike '%' || $2::text || '%' or alt ilike '%' || $2::text || '%');
`

const QListAllImages = `--sql fd703cfb-c5ed-4f2c-aba4-78ddd4f4a85f
select ` + imageColumns + `
from images
order by created_at asc;
`

const QSelectImageByID = `--sql 1e2d2b4f-abc9-4895-9883-583445bc3ab2
select ` + imageColumns + `
from images
where id = $1::uuid
limit 1;
`

const QSelectImagesByFilename = `--sql c329483c-ebf8-4b8f-8c13-fcee994dc30b
select ` + imageColumns + `
from images
where lower(filename) = lower($1::text)
order by created_at desc;
`

const QInsertImage = `--sql 6beaab38-14b4-4e4c-bd2d-7c4ff745dffc
insert into images(id, filename, alt, category, url, width, height, size, created_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text, $5::int, $6::int, $7::bigint, now())
returning id, created_at;
`

const QUpdateImage = `--sql 5a9a023a-1640-45fc-b117-eed0f97cbeaf
update images
set alt = coalesce($2::text, alt),
    category = coalesce($3::text, category),
    url = coalesce($4::text, url)
where id = $1::uuid
returning ` + imageColumns + `;
`

const QUpdateImageURL = `--sql 0ae750a3-7eec-41ce-b071-21a401d03f25
update images set url = $2::text where id = $1::uuid;
`

const QDeleteImage = `--sql d04908cd-47ef-4279-8f03-8b0c00a5c15f
delete from images where id = $1::uuid;
`

const QListImageCategories = `--sql f951331c-e9c1-4f24-bb83-071d80532bef
select category, count(*)::int
from images
where category <> ''
group by category
order by category asc;
`
